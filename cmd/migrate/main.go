package main

import (
	"log"

	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up Extensions...")
	if err := database.EnsureExtensions(db); err != nil {
		log.Fatalf("Error: %v", err)
	}

	models := []interface{}{
		&model.Conversation{},
		&model.Message{},
		&model.ConversationSession{},
		&model.ConversationState{},
		&model.Document{},
		&model.DocumentChunk{},
	}

	log.Printf("Step 2: Running AutoMigrate for %d Tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating Indexes...")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_conversation_start ON conversation_sessions (conversation_id, session_start);`,
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_document_index ON document_chunks (document_id, chunk_index);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed successfully via GORM.")
}
