// Package database - Index cho các collection của bot (compound, unique, TTL).
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// CreateIndexes tạo các index cần thiết cho các collection của bot.
// Gọi một lần khi khởi động, sau khi registry collections đã sẵn sàng.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	// users: telegramId unique — tra cứu user theo id Telegram
	users := db.Collection(global.ColNames.Users)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "telegramId", Value: 1}},
		Options: options.Index().SetName("user_telegram_id").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// posts: (authorId, createdAt desc) — gallery theo tác giả, mới nhất trước
	posts := db.Collection(global.ColNames.Posts)
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "authorId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("post_author_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// post_comments: (postId, createdAt desc) — hiển thị comment mới nhất trước
	comments := db.Collection(global.ColNames.PostComments)
	if _, err := comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "postId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("comment_post_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// matches: (userId, authorId, postId) unique — chặn match trùng ở tầng store
	matches := db.Collection(global.ColNames.Matches)
	if _, err := matches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "authorId", Value: 1},
			{Key: "postId", Value: 1},
		},
		Options: options.Index().SetName("match_user_author_post").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// favorites: (userId, postId) unique — chặn favorite trùng
	favorites := db.Collection(global.ColNames.Favorites)
	if _, err := favorites.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "postId", Value: 1},
		},
		Options: options.Index().SetName("favorite_user_post").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// drafts: (ownerId, draftId) unique — tra cứu draft theo chủ sở hữu
	drafts := db.Collection(global.ColNames.Drafts)
	if _, err := drafts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerId", Value: 1},
			{Key: "draftId", Value: 1},
		},
		Options: options.Index().SetName("draft_owner_draft_id").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// drafts: expiresAt — quét draft hết hạn theo batch (worker tự xóa,
	// không dùng TTL index của Mongo để giữ semantics delete-on-read nhất quán)
	if _, err := drafts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("draft_expires_at"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
