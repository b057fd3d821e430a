package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/config"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// GetInstance kết nối MongoDB theo URI trong cấu hình và trả về client.
// Pool nhỏ là đủ: mọi truy cập store đều đi qua webhook của bot hoặc
// admin API, không có luồng ingest nặng.
func GetInstance(c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_ConnectionURI == "" {
		return nil, fmt.Errorf("MongoDB connection URI rỗng")
	}

	clientOptions := options.Client().ApplyURI(c.MongoDB_ConnectionURI).
		SetMaxPoolSize(20).                 // Giới hạn connections cho workload bot
		SetMinPoolSize(2).                  // Giữ sẵn connections cho webhook burst
		SetConnectTimeout(5 * time.Second). // Timeout khi kết nối
		SetSocketTimeout(10 * time.Second)  // Timeout khi gửi nhận dữ liệu

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping để chắc chắn kết nối sống trước khi đưa vào global
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to MongoDB")
	return client, nil
}
