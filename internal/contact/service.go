// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
)

type Notifier interface {
	Notify(ctx context.Context, email notify.Email)
}

type Service struct {
	repo     Repository
	notifier Notifier
	support  string
	logger   *slog.Logger
}

// NewService forwards every stored message to the support address.
// An empty support address disables forwarding.
func NewService(repo Repository, notifier Notifier, support string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		support:  strings.TrimSpace(support),
		logger:   logger,
	}
}

func (s *Service) CreateContact(
	ctx context.Context,
	name, email, message string,
) (m *Message, err error) {
	ctx, finish := core.StartWorkflow(ctx, "contact_create")
	defer func() { finish(err) }()

	m = &Message{
		ID:      core.NewID(),
		Name:    strings.TrimSpace(name),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Message: strings.TrimSpace(message),
	}

	switch {
	case m.Name == "":
		return nil, core.InvalidRequest("name is required")
	case m.Email == "":
		return nil, core.InvalidRequest("email is required")
	case m.Message == "":
		return nil, core.InvalidRequest("message is required")
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "contact message stored", "contact_id", m.ID)

	if s.support == "" {
		s.logger.WarnContext(ctx, "support address not configured, contact email skipped",
			"contact_id", m.ID,
		)
		return m, nil
	}

	s.notifier.Notify(ctx, notify.ContactEmail(s.support, m.Name, m.Email, m.Message))

	return m, nil
}
