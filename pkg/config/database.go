package config

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenPostgres initializes the PostgreSQL database connection using GORM
func OpenPostgres(connStr string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Info("connected to PostgreSQL")
	return db, nil
}

// ConnectMongo initializes the MongoDB connection
func ConnectMongo(ctx context.Context, uri string, log *slog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("connected to MongoDB")
	return client, nil
}

// ClosePostgres closes the underlying connection pool
func ClosePostgres(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("error getting SQL DB from GORM", slog.String("error", err.Error()))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("error closing PostgreSQL connection", slog.String("error", err.Error()))
		return
	}
	log.Info("PostgreSQL connection closed")
}

// CloseMongo disconnects the client
func CloseMongo(client *mongo.Client, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error("error closing MongoDB connection", slog.String("error", err.Error()))
		return
	}
	log.Info("MongoDB connection closed")
}
