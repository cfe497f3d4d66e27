// AngelaMos | 2026
// entity.go

package feed

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeBeadCreated       = "bead_created"
	TypeOwnershipTransfer = "ownership_transfer"
	TypePost              = "post"
)

const (
	BlockText  = "text"
	BlockImage = "image"
	BlockVideo = "video"
)

type Block struct {
	Type    string `json:"type"    validate:"required,oneof=text image video"`
	Content string `json:"content" validate:"required,max=4000"`
}

// Blocks is stored as a JSONB array.
type Blocks []Block

func (b Blocks) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b)
}

func (b *Blocks) Scan(src any) error {
	return scanJSON(src, b)
}

type Location struct {
	Lat     float64 `json:"lat"     validate:"latitude"`
	Lng     float64 `json:"lng"     validate:"longitude"`
	Address string  `json:"address" validate:"max=500"`
}

func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Location) Scan(src any) error {
	return scanJSON(src, l)
}

// UnknownLocation is attached to generated posts that have no geotag.
var UnknownLocation = Location{Address: "Unknown location"}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("scan json: unsupported type %T", src)
	}
}

type Post struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	BeadID    *string   `db:"bead_id"`
	BeadName  string    `db:"bead_name"`
	BeadImage string    `db:"bead_image"`
	UserID    string    `db:"user_id"`
	Content   Blocks    `db:"content"`
	Location  *Location `db:"location"`
	CreatedAt time.Time `db:"created_at"`
}

// PostView is a post with its author and engagement counts.
type PostView struct {
	Post
	AuthorName   string `db:"author_name"`
	AuthorAvatar string `db:"author_avatar"`
	LikeCount    int    `db:"like_count"`
	CommentCount int    `db:"comment_count"`
}

type Like struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	FullName  string    `db:"full_name"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID         string    `db:"id"`
	PostID     string    `db:"post_id"`
	UserID     string    `db:"user_id"`
	AuthorName string    `db:"author_name"`
	Text       string    `db:"text"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// BeadEvent describes a bead change that should appear in the feed.
type BeadEvent struct {
	BeadID      string
	BeadName    string
	Description string
	Image       string
	UserID      string
}
