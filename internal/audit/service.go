package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"auditdesk/internal/storage"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Service holds the engagement rules: validation, code generation, sign-off
// semantics and progress. Persistence and blob storage are injected.
type Service struct {
	logger *logrus.Logger
	store  Store
	blobs  storage.Backend
	now    func() time.Time
}

func New(logger *logrus.Logger, store Store, blobs storage.Backend) *Service {
	return &Service{
		logger: logger,
		store:  store,
		blobs:  blobs,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrValidation, fmt.Sprintf(format, args...))
}

// parseDate accepts a bare date or an RFC 3339 timestamp. Empty input is nil.
func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	raw := strings.TrimSpace(*value)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}

	return nil, validationError("%s must be a date (YYYY-MM-DD)", field)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// asValidation rewrites a not-found from a referenced record into a
// validation failure of the request that referenced it.
func asValidation(err error, format string, args ...any) error {
	if errors.Is(err, types.ErrNotFound) {
		return validationError(format, args...)
	}
	return err
}
