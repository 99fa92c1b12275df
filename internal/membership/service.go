package membership

import (
	"context"
	"errors"
	"time"

	"github.com/cavos-labs/forma-api/internal/gym"
	"github.com/cavos-labs/forma-api/internal/logger"
	"github.com/cavos-labs/forma-api/internal/notification"
	"github.com/cavos-labs/forma-api/internal/user"
)

var (
	ErrGymNotFound   = errors.New("gym not found")
	ErrGymInactive   = errors.New("gym is not active")
	ErrEmailExists   = errors.New("user with this email already exists")
	ErrInvalidDate   = errors.New("date_of_birth must be YYYY-MM-DD")
)

// InstructionMailer queues the payment-instruction email. Best effort only.
type InstructionMailer interface {
	SendPaymentInstructions(ctx context.Context, baseUploadURL string, data notification.PaymentInstructions) error
}

type Service struct {
	users         user.Store
	memberships   Store
	gyms          gym.Store
	mailer        InstructionMailer
	uploadBaseURL string
	now           func() time.Time
}

func NewService(users user.Store, memberships Store, gyms gym.Store, mailer InstructionMailer, uploadBaseURL string) *Service {
	return &Service{
		users:         users,
		memberships:   memberships,
		gyms:          gyms,
		mailer:        mailer,
		uploadBaseURL: uploadBaseURL,
		now:           time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RegisterResult struct {
	User       *user.User
	Membership *Membership
	EmailNote  string
}

// Register creates the member and their pending membership. The user insert
// and membership insert are separate statements; if the second fails the
// first is compensated with a delete so no orphan user row survives.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	g, err := s.gyms.GetByID(ctx, req.GymID)
	if err != nil {
		return nil, ErrGymNotFound
	}
	if !g.IsActive {
		return nil, ErrGymInactive
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	params := user.CreateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Phone != "" {
		params.Phone = &req.Phone
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDate
		}
		params.DateOfBirth = &dob
	}

	u, err := s.users.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	m, err := s.memberships.Create(ctx, u.ID, g.ID, g.MonthlyFee, PendingEndDate(s.now()))
	if err != nil {
		logger.Errorf("Membership creation failed, removing user %s: %v", u.ID, err)
		if delErr := s.users.Delete(ctx, u.ID); delErr != nil {
			logger.Errorf("Compensating user delete failed for %s: %v", u.ID, delErr)
		}
		return nil, err
	}

	result := &RegisterResult{User: u, Membership: m}

	if s.mailer != nil {
		mailErr := s.mailer.SendPaymentInstructions(ctx, s.uploadBaseURL, notification.PaymentInstructions{
			UserEmail:    u.Email,
			UserName:     u.FullName(),
			GymName:      g.Name,
			SinpePhone:   g.SinpePhone,
			MonthlyFee:   g.MonthlyFee,
			MembershipID: m.ID,
		})
		if mailErr != nil {
			logger.Errorf("Payment instruction email failed for membership %s: %v", m.ID, mailErr)
			result.EmailNote = "payment instruction email failed"
		} else {
			result.EmailNote = "payment instruction email queued"
		}
	}

	return result, nil
}
