package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account record in the users collection.
//
// OTP/OTPExpiresAt and ResetTokenHash/ResetTokenExpiresAt are pointer pairs:
// both set while a verification or reset cycle is outstanding, both nil
// otherwise. Use the Set/Clear helpers so the pairs never drift apart.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	PasswordHash        string             `bson:"password_hash" json:"-"`
	ProfilePic          string             `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	IsVerified          bool               `bson:"is_verified" json:"is_verified"`
	OTP                 *string            `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt        *time.Time         `bson:"otp_expires_at,omitempty" json:"-"`
	ResetTokenHash      *string            `bson:"reset_token_hash,omitempty" json:"-"`
	ResetTokenExpiresAt *time.Time         `bson:"reset_token_expires_at,omitempty" json:"-"`
	LastLoginAt         *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// SetOTP stores a fresh verification code together with its expiry.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTP = &code
	u.OTPExpiresAt = &expiresAt
}

// ClearOTP removes both OTP fields at once.
func (u *User) ClearOTP() {
	u.OTP = nil
	u.OTPExpiresAt = nil
}

// SetResetToken stores the hash of an outstanding reset token and its expiry.
func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	u.ResetTokenHash = &hash
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearResetToken removes both reset-token fields at once.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
}
