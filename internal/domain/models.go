// Package domain defines the persistence models for collections, flashcards,
// AI generation sessions and their failures. These types are mapped with GORM
// and form the core data layer of the flashcards application.
package domain

import "time"

// Flashcard sources.
const (
	SourceManual   = "manual"
	SourceAIFull   = "ai-full"
	SourceAIEdited = "ai-edited"
)

// IsAISource reports whether s denotes an AI-generated card.
func IsAISource(s string) bool { return s == SourceAIFull || s == SourceAIEdited }

// Collection groups flashcards of one user under a name that is unique per
// user.
//
// Fields:
//   - ID: UUID primary key.
//   - UserID: owner (hosted auth user id).
//   - Name: 1..100 chars, unique per user.
//   - Description: optional free text.
type Collection struct {
	ID          string    `json:"id"          gorm:"type:varchar(36);primaryKey"`
	UserID      string    `json:"user_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_collections_user_name,priority:1"`
	Name        string    `json:"name"        gorm:"type:varchar(100);not null;uniqueIndex:ux_collections_user_name,priority:2"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Collection.
func (Collection) TableName() string { return "collections" }

// Flashcard is a question/answer pair. Cards produced by a generation keep a
// reference to it; the source records whether the user edited the proposal.
//
// Fields:
//   - Front: up to 200 chars. Back: up to 500 chars.
//   - Source: manual | ai-full | ai-edited (enforced by DB constraint).
//   - GenerationID: set for ai-* cards, null for manual ones.
//   - CollectionID: optional; nulled when the collection is deleted.
type Flashcard struct {
	ID           string    `json:"id"            gorm:"type:varchar(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_flashcards_user,priority:1"`
	Front        string    `json:"front"         gorm:"type:varchar(200);not null"`
	Back         string    `json:"back"          gorm:"type:varchar(500);not null"`
	Source       string    `json:"source"        gorm:"type:varchar(16);not null;check:source IN ('manual','ai-full','ai-edited')"`
	GenerationID *string   `json:"generation_id" gorm:"type:varchar(36);index"`
	CollectionID *string   `json:"collection_id" gorm:"type:varchar(36);index"`
	CreatedAt    time.Time `json:"created_at"    gorm:"index:idx_flashcards_user,priority:2"`
	UpdatedAt    time.Time `json:"updated_at"`

	Generation *Generation `json:"-" gorm:"foreignKey:GenerationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Collection *Collection `json:"-" gorm:"foreignKey:CollectionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Flashcard.
func (Flashcard) TableName() string { return "flashcards" }

// Generation records one AI generation session. The source text itself is
// not stored, only its SHA-256 hash and length.
type Generation struct {
	ID                    string    `json:"id"                      gorm:"type:varchar(36);primaryKey"`
	UserID                string    `json:"user_id"                 gorm:"type:varchar(64);not null;index:idx_generations_user,priority:1"`
	Model                 string    `json:"model"                   gorm:"type:varchar(128);not null"`
	GeneratedCount        int       `json:"generated_count"         gorm:"not null;default:0"`
	AcceptedUneditedCount int       `json:"accepted_unedited_count" gorm:"not null;default:0"`
	AcceptedEditedCount   int       `json:"accepted_edited_count"   gorm:"not null;default:0"`
	SourceTextHash        string    `json:"source_text_hash"        gorm:"type:varchar(64);not null;index"`
	SourceTextLength      int       `json:"source_text_length"      gorm:"not null;check:source_text_length BETWEEN 1000 AND 10000"`
	GenerationDurationMs  int64     `json:"generation_duration"     gorm:"not null"`
	CreatedAt             time.Time `json:"created_at"              gorm:"index:idx_generations_user,priority:2"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the database table name for Generation.
func (Generation) TableName() string { return "generations" }

// GenerationErrorLog records a failed generation attempt.
type GenerationErrorLog struct {
	ID               string    `json:"id"                 gorm:"type:varchar(36);primaryKey"`
	UserID           string    `json:"user_id"            gorm:"type:varchar(64);not null;index:idx_generation_errors_user,priority:1"`
	Model            string    `json:"model"              gorm:"type:varchar(128);not null"`
	SourceTextHash   string    `json:"source_text_hash"   gorm:"type:varchar(64);not null"`
	SourceTextLength int       `json:"source_text_length" gorm:"not null"`
	ErrorCode        string    `json:"error_code"         gorm:"type:varchar(100);not null"`
	ErrorMessage     string    `json:"error_message"      gorm:"type:text;not null"`
	CreatedAt        time.Time `json:"created_at"         gorm:"index:idx_generation_errors_user,priority:2"`
}

// TableName returns the database table name for GenerationErrorLog.
func (GenerationErrorLog) TableName() string { return "generation_error_logs" }

// All lists every model for auto-migration, parents first.
func All() []any {
	return []any{&Collection{}, &Generation{}, &Flashcard{}, &GenerationErrorLog{}, &Idempotency{}}
}
