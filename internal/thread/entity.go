// AngelaMos | 2026
// entity.go

package thread

import (
	"time"

	"github.com/lib/pq"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Thread struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	OwnerID     string     `db:"owner_id"`
	Visibility  string     `db:"visibility"`
	Avatar      string     `db:"avatar"`
	QRCode      string     `db:"qr_code"`
	Link        string     `db:"link"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (t *Thread) IsOwner(userID string) bool {
	return t.OwnerID == userID
}

// Summary is a thread row with aggregate counts for list views.
type Summary struct {
	Thread
	OwnerName   string `db:"owner_name"`
	MemberCount int    `db:"member_count"`
	BeadCount   int    `db:"bead_count"`
}

type Member struct {
	UserID   string    `db:"user_id"`
	FullName string    `db:"full_name"`
	Avatar   string    `db:"avatar"`
	AddedAt  time.Time `db:"added_at"`
}

// BeadRef is the slice of a bead shown on a thread page.
type BeadRef struct {
	ID      string         `db:"id"`
	Name    string         `db:"name"`
	OwnerID string         `db:"owner_id"`
	Images  pq.StringArray `db:"images"`
}

type Detail struct {
	Thread
	Owner   *Member
	Members []Member
	Beads   []BeadRef
}

// MemberSet answers membership questions over canonical ids.
type MemberSet map[string]struct{}

func NewMemberSet(ids []string) MemberSet {
	set := make(MemberSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s MemberSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Missing returns the ids not yet in the set, in input order.
func (s MemberSet) Missing(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
