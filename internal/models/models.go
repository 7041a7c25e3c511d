package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system. Its JSON form is the public
// author summary embedded in crimes, comments and lawyer profiles; contact
// details only leave through Account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"-" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:16;not null"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is the signed-in user's own view of their record
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Account() *Account {
	return &Account{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		PushToken: u.PushToken,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// Crime represents one reported incident, the root of the aggregate
type Crime struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	Title        string       `json:"title" gorm:"not null"`
	Description  string       `json:"description" gorm:"type:text;not null"`
	Location     string       `json:"location" gorm:"not null"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	CrimeType    CrimeType    `json:"crime_type" gorm:"size:32;not null;index"`
	Verification Verification `json:"verification" gorm:"size:16;not null;index"`
	IsLive       bool         `json:"is_live" gorm:"not null;index"`
	UserID       *string      `json:"user_id,omitempty" gorm:"size:36;index"`
	User         *User        `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	IncidentAt   time.Time    `json:"incident_at" gorm:"not null;index"`
	ReportedAt   time.Time    `json:"reported_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Media    []Media   `json:"media,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Votes    []Vote    `json:"votes,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	VoteStats VoteStats `json:"vote_stats" gorm:"-"`
}

func (c *Crime) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Verification == "" {
		c.Verification = VerificationPending
	}
	return nil
}

// OwnedBy reports whether userID reported this crime
func (c *Crime) OwnedBy(userID string) bool {
	return userID != "" && c.UserID != nil && *c.UserID == userID
}

// Vote is one user's up (true) or down (false) judgment on a crime.
// At most one row exists per (user, crime).
type Vote struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_votes_user_crime"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CrimeID   string    `json:"crime_id" gorm:"size:36;not null;uniqueIndex:idx_votes_user_crime;index"`
	Value     bool      `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// Comment is an append-only remark on a crime. UserID is nil for anonymous
// comments written by internal tooling.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CrimeID   string    `json:"crime_id" gorm:"size:36;not null;index"`
	UserID    *string   `json:"user_id,omitempty" gorm:"size:36;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Pinned    bool      `json:"pinned" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Media is a stored file reference attached to one crime
type Media struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CrimeID   string    `json:"crime_id" gorm:"size:36;not null;index"`
	URL       string    `json:"url" gorm:"not null"`
	ObjectKey string    `json:"object_key,omitempty"`
	Type      MediaType `json:"type" gorm:"size:8;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Lawyer is the professional profile that exists iff its user has RoleLawyer
type Lawyer struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	UserID         string    `json:"user_id" gorm:"size:36;not null;uniqueIndex"`
	User           *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	LegalName      string    `json:"legal_name" gorm:"not null;index"`
	Specialization *string   `json:"specialization,omitempty" gorm:"index"`
	Experience     int       `json:"experience" gorm:"not null"`
	Description    string    `json:"description" gorm:"type:text;not null"`
	LicenseNo      string    `json:"license_no" gorm:"not null;uniqueIndex"`
	FatherName     string    `json:"father_name" gorm:"not null"`
	CNIC           string    `json:"cnic" gorm:"column:cnic;not null"`
	IsVerified     bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (l *Lawyer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// All lists every persisted model in dependency order for migrations
func All() []interface{} {
	return []interface{}{
		&User{},
		&Crime{},
		&Vote{},
		&Comment{},
		&Media{},
		&Lawyer{},
	}
}
