package core

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DigestToken returns the hex BLAKE2b-256 digest of a session token.
// Stored sessions carry the digest; the token itself stays with the client.
func DigestToken(token string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Category groups searchable entries in the app-bar search.
type Category int

const (
	// CategoryDashboards holds dashboard pages.
	CategoryDashboards Category = iota + 1
	// CategoryAppsPages holds application pages.
	CategoryAppsPages
	// CategoryUserInterface holds UI element showcases.
	CategoryUserInterface
	// CategoryFormsTables holds form and table pages.
	CategoryFormsTables
	// CategoryChartsMisc holds charts and everything else.
	CategoryChartsMisc
)

// Categories lists every category in result order.
var Categories = []Category{
	CategoryDashboards,
	CategoryAppsPages,
	CategoryUserInterface,
	CategoryFormsTables,
	CategoryChartsMisc,
}

var categoryNames = map[Category]string{
	CategoryDashboards:    "dashboards",
	CategoryAppsPages:     "appsPages",
	CategoryUserInterface: "userInterface",
	CategoryFormsTables:   "formsTables",
	CategoryChartsMisc:    "chartsMisc",
}

// String returns the wire name of the category, e.g. "appsPages".
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory maps a wire name back to its Category.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: value %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Entry is one searchable destination in the catalog.
type Entry struct {
	Id       int      `json:"id" yaml:"id"`
	URL      string   `json:"url" yaml:"url"`
	Icon     string   `json:"icon" yaml:"icon"`
	Title    string   `json:"title" yaml:"title"`
	Category Category `json:"category" yaml:"category"`
}

// Role is the permission group a user belongs to.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAuthor     Role = "author"
	RoleEditor     Role = "editor"
	RoleMaintainer Role = "maintainer"
	RoleSubscriber Role = "subscriber"
)

// Approval records whether a user may rework items. Empty means unset.
type Approval string

const (
	ApprovalUnset Approval = ""
	ApprovalYes   Approval = "yes"
	ApprovalNo    Approval = "no"
)

const (
	// DefaultRole is assigned when a new user has no role.
	DefaultRole = RoleSubscriber
	// DefaultPlan is assigned when a new user has no plan.
	DefaultPlan = "basic"
	// DefaultStatus is assigned to every new user.
	DefaultStatus = "active"
)

// User is a dashboard account.
type User struct {
	Id           ID
	FullName     string
	Username     string
	Email        string
	Company      string
	Country      string
	Contact      string
	Billing      string
	Role         Role
	CurrentPlan  string
	Approval     Approval
	Status       string
	Avatar       string
	PasswordHash string    // bcrypt hash, empty for accounts that cannot log in
	InsertedAt   time.Time // When the user was inserted into the database
	UpdatedAt    time.Time // When the user was last updated
}

// NewUser carries the fields submitted to create a user.
// Password is only used by bulk imports; the add-user form leaves it empty.
type NewUser struct {
	FullName    string   `json:"fullName" yaml:"fullName"`
	Username    string   `json:"username" yaml:"username"`
	Email       string   `json:"email" yaml:"email"`
	Company     string   `json:"company" yaml:"company"`
	Country     string   `json:"country" yaml:"country"`
	Contact     string   `json:"contact" yaml:"contact"`
	Billing     string   `json:"billing" yaml:"billing"`
	Role        Role     `json:"role" yaml:"role"`
	CurrentPlan string   `json:"currentPlan" yaml:"currentPlan"`
	Approval    Approval `json:"approval" yaml:"approval"`
	Avatar      string   `json:"avatar" yaml:"avatar"`
	Password    string   `json:"password,omitempty" yaml:"password"`
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Session is an authenticated login.
type Session struct {
	Token       string // only set in memory, never persisted
	TokenDigest string // DigestToken(Token), what storage keeps
	UserId      ID
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Matches reports whether token is the one this session was issued for.
func (s *Session) Matches(token string) bool {
	want := DigestToken(token)
	return subtle.ConstantTimeCompare([]byte(s.TokenDigest), []byte(want)) == 1
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
