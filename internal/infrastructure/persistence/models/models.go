package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposalModel is the schema of investment_proposals. The check constraints repeat the
// record invariants so rows written outside the service cannot break them.
type ProposalModel struct {
	ID                 uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_proposals_user_created,priority:1"`
	Title              string     `gorm:"column:title;type:varchar(255);not null"`
	Action             string     `gorm:"column:action;type:varchar(4);not null;check:chk_proposals_action,action IN ('BUY','SELL')"`
	Units              float64    `gorm:"column:units;type:numeric(20,8);not null;check:chk_proposals_units,units > 0"`
	UnitPrice          float64    `gorm:"column:unit_price;type:numeric(20,8);not null;check:chk_proposals_unit_price,unit_price > 0"`
	InvestmentAmount   float64    `gorm:"column:investment_amount;type:numeric(20,8);not null"`
	RiskLevel          string     `gorm:"column:risk_level;type:varchar(10);not null;check:chk_proposals_risk,risk_level IN ('low','medium','high')"`
	Description        *string    `gorm:"column:description;type:text"`
	ExpectedReturn     *string    `gorm:"column:expected_return;type:varchar(100)"`
	TimeHorizon        *string    `gorm:"column:time_horizon;type:varchar(100)"`
	AdditionalNotes    *string    `gorm:"column:additional_notes;type:text"`
	Status             string     `gorm:"column:status;type:varchar(10);not null;default:pending;index;check:chk_proposals_status,status IN ('pending','accepted','rejected')"`
	Deadline           *time.Time `gorm:"column:deadline;type:timestamptz"`
	ClientDecisionDate *time.Time `gorm:"column:client_decision_date;type:timestamptz"`
	DigitalSignature   *string    `gorm:"column:digital_signature;type:varchar(255)"`
	RejectionReason    *string    `gorm:"column:rejection_reason;type:text"`
	DecidedBy          *uuid.UUID `gorm:"column:decided_by;type:uuid"`
	CreatedAt          time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP;index:idx_proposals_user_created,priority:2,sort:desc"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (ProposalModel) TableName() string {
	return "investment_proposals"
}

type DocumentModel struct {
	ID           uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	DocumentType string     `gorm:"column:document_type;type:varchar(50);not null"`
	FileName     string     `gorm:"column:file_name;type:varchar(255);not null"`
	ObjectKey    string     `gorm:"column:object_key;type:varchar(512);not null;uniqueIndex"`
	FileSize     int64      `gorm:"column:file_size;not null"`
	MimeType     string     `gorm:"column:mime_type;type:varchar(100);not null"`
	Status       string     `gorm:"column:status;type:varchar(10);not null;default:pending;index;check:chk_documents_status,status IN ('pending','approved','rejected')"`
	ReviewNotes  *string    `gorm:"column:review_notes;type:text"`
	ReviewedBy   *uuid.UUID `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (DocumentModel) TableName() string {
	return "kyc_documents"
}

// ProfileModel is keyed by the auth user id, one row per user.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"primaryKey;column:id;type:uuid"`
	FullName  *string   `gorm:"column:full_name;type:varchar(120)"`
	Username  *string   `gorm:"column:username;type:varchar(32);uniqueIndex"`
	Website   *string   `gorm:"column:website;type:varchar(2048)"`
	AvatarURL *string   `gorm:"column:avatar_url;type:varchar(2048)"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

type ActivityModel struct {
	ID         uuid.UUID `gorm:"primaryKey;column:id;type:uuid"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	EventType  string    `gorm:"column:event_type;type:varchar(50);not null;index"`
	EventData  []byte    `gorm:"column:event_data;type:jsonb;not null;default:'{}'"`
	OccurredAt time.Time `gorm:"column:occurred_at;type:timestamptz;not null;index"`
}

func (ActivityModel) TableName() string {
	return "activity_log"
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&ProposalModel{},
		&DocumentModel{},
		&ProfileModel{},
		&ActivityModel{},
	}
}

// Migrate creates or updates the portal schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
