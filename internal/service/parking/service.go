package parking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/internal/service/billing"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/metrics"
	"github.com/arman-qz/parking-system/pkg/trm"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

// Service drives the parking session lifecycle: start, stop, pay and
// the live status view. All state changes happen inside a single
// transaction scope, so a failed step leaves no partial rows behind.
type Service struct {
	sessions SessionRepo
	drivers  DriverLedger
	owners   OwnerLedger
	events   EventPublisher
	trm      trm.TxManager
	log      logger.Logger
}

func NewService(sessions SessionRepo, drivers DriverLedger, owners OwnerLedger, events EventPublisher, trm trm.TxManager, log logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		drivers:  drivers,
		owners:   owners,
		events:   events,
		trm:      trm,
		log:      log,
	}
}

// StartSession opens a parking session for the driver at the given lot.
// If the driver already has an active session anywhere, no new session is
// created and the existing one is returned with Duplicate set. A lost
// insert race behaves the same way as finding the duplicate up front.
func (s *Service) StartSession(ctx context.Context, driverEmail, ownerEmail string) (*models.StartResult, error) {
	const op = "parkingService.StartSession"
	ctx = wrap.WithAction(ctx, "start_session")
	ctx = wrap.WithUserEmail(ctx, driverEmail)

	var result *models.StartResult
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		existing, err := s.sessions.FindActiveByDriver(ctx, driverEmail)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if existing != nil {
			loc, err := s.owners.GetLocation(ctx, existing.OwnerEmail)
			if err != nil {
				return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
			}
			result = &models.StartResult{
				SessionID: existing.ID,
				Duplicate: true,
				Location:  loc,
				StartTime: existing.StartTime,
			}
			return nil
		}

		// Owner lookup doubles as an existence check: no lot, no session.
		loc, err := s.owners.GetLocation(ctx, ownerEmail)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		// An owner without a payment policy cannot bill, and a session at
		// such a lot could never be stopped. Refuse up front.
		if _, err := s.owners.GetPaymentPolicy(ctx, ownerEmail); err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		id, err := uuid.New()
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		session := &models.ParkingSession{
			ID:            id,
			DriverEmail:   driverEmail,
			OwnerEmail:    ownerEmail,
			StartTime:     time.Now().UTC(),
			PaymentStatus: types.PaymentUnpaid,
		}
		if err := s.sessions.Insert(ctx, session); err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		result = &models.StartResult{
			SessionID: session.ID,
			Location:  loc,
			StartTime: session.StartTime,
		}
		return nil
	})
	if errors.Is(err, types.ErrDuplicateSession) {
		// Lost the insert race: the winner's row is now the driver's
		// active session, report it as the duplicate.
		return s.activeAsDuplicate(ctx, driverEmail)
	}
	if err != nil {
		return nil, err
	}

	if !result.Duplicate {
		metrics.ActiveSessionsGauge.WithLabelValues(string(types.DriverService)).Inc()
		metrics.SessionsTotal.WithLabelValues(string(types.DriverService), "started").Inc()
		s.publishStarted(ctx, result, driverEmail, ownerEmail)
	}
	return result, nil
}

// activeAsDuplicate re-reads the driver's active session after a lost
// insert race and shapes it as a duplicate start.
func (s *Service) activeAsDuplicate(ctx context.Context, driverEmail string) (*models.StartResult, error) {
	const op = "parkingService.activeAsDuplicate"

	var result *models.StartResult
	err := s.trm.DoReadOnly(ctx, func(ctx context.Context) error {
		existing, err := s.sessions.FindActiveByDriver(ctx, driverEmail)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if existing == nil {
			// Winner stopped already, caller can simply retry.
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrDuplicateSession))
		}
		loc, err := s.owners.GetLocation(ctx, existing.OwnerEmail)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		result = &models.StartResult{
			SessionID: existing.ID,
			Duplicate: true,
			Location:  loc,
			StartTime: existing.StartTime,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StopSession ends an active session and returns the bill. All three
// identifiers must match the active row; anything else is not found.
func (s *Service) StopSession(ctx context.Context, sessionID uuid.UUID, driverEmail, ownerEmail string) (*models.SessionReceipt, error) {
	const op = "parkingService.StopSession"
	ctx = wrap.WithAction(ctx, "stop_session")
	ctx = wrap.WithUserEmail(ctx, driverEmail)
	ctx = wrap.WithSessionID(ctx, sessionID.String())

	var receipt *models.SessionReceipt
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		session, err := s.sessions.MarkStopped(ctx, sessionID, driverEmail, ownerEmail, time.Now().UTC())
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		sp, err := s.sessions.FindWithOwnerPolicy(ctx, sessionID)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		durMs := session.EndTime.Sub(session.StartTime).Milliseconds()
		total, penalty := billing.Calculate(durMs, sp.Policy)
		receipt = &models.SessionReceipt{
			SessionID:       session.ID,
			DurationSeconds: durMs / 1000,
			TotalAmount:     total,
			PenaltyAmount:   penalty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ActiveSessionsGauge.WithLabelValues(string(types.DriverService)).Dec()
	metrics.SessionsTotal.WithLabelValues(string(types.DriverService), "stopped").Inc()
	s.publishStopped(ctx, receipt, driverEmail, ownerEmail)
	return receipt, nil
}

// PaySession settles an ended session: debit the driver, credit the owner
// and flip the payment flag. Paying twice is a no-op that returns the same
// receipt, with no second money movement.
func (s *Service) PaySession(ctx context.Context, sessionID uuid.UUID, driverEmail string) (*models.SessionReceipt, error) {
	const op = "parkingService.PaySession"
	ctx = wrap.WithAction(ctx, "pay_session")
	ctx = wrap.WithUserEmail(ctx, driverEmail)
	ctx = wrap.WithSessionID(ctx, sessionID.String())

	var (
		receipt    *models.SessionReceipt
		ownerEmail string
		settled    bool
	)
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		sp, err := s.sessions.FindWithOwnerPolicy(ctx, sessionID)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if sp.Session.DriverEmail != driverEmail {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrSessionNotFound))
		}
		if sp.Session.EndTime == nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrSessionNotEnded))
		}
		ownerEmail = sp.Session.OwnerEmail

		durMs := sp.Session.EndTime.Sub(sp.Session.StartTime).Milliseconds()
		total, penalty := billing.Calculate(durMs, sp.Policy)
		receipt = &models.SessionReceipt{
			SessionID:       sp.Session.ID,
			DurationSeconds: durMs / 1000,
			TotalAmount:     total,
			PenaltyAmount:   penalty,
		}

		if sp.Session.PaymentStatus == types.PaymentPaid {
			return nil
		}
		flipped, err := s.sessions.MarkPaid(ctx, sessionID)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if !flipped {
			// A concurrent payment won the flip, treat ours as the repeat.
			return nil
		}

		if err := s.drivers.Debit(ctx, driverEmail, total); err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if err := s.owners.Credit(ctx, sp.Session.OwnerEmail, total); err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		settled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled {
		metrics.PaymentsSettledTotal.WithLabelValues(string(types.DriverService)).Inc()
		metrics.PaymentAmountMinorUnits.WithLabelValues(string(types.DriverService), "total").Add(float64(receipt.TotalAmount))
		metrics.PaymentAmountMinorUnits.WithLabelValues(string(types.DriverService), "penalty").Add(float64(receipt.PenaltyAmount))
		s.publishPaid(ctx, receipt, driverEmail, ownerEmail)
	}
	return receipt, nil
}

// GetActiveSession reports the driver's running session with the charge
// accrued so far, priced exactly like a stop at this instant would be.
func (s *Service) GetActiveSession(ctx context.Context, driverEmail string) (*models.ActiveSessionStatus, error) {
	const op = "parkingService.GetActiveSession"
	ctx = wrap.WithAction(ctx, "get_active_session")
	ctx = wrap.WithUserEmail(ctx, driverEmail)

	var status *models.ActiveSessionStatus
	err := s.trm.DoReadOnly(ctx, func(ctx context.Context) error {
		session, err := s.sessions.FindActiveByDriver(ctx, driverEmail)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if session == nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrSessionNotFound))
		}

		sp, err := s.sessions.FindWithOwnerPolicy(ctx, session.ID)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}

		durMs := time.Now().UTC().Sub(session.StartTime).Milliseconds()
		total, penalty := billing.Calculate(durMs, sp.Policy)
		status = &models.ActiveSessionStatus{
			SessionID:      session.ID,
			OwnerEmail:     session.OwnerEmail,
			StartTime:      session.StartTime,
			ElapsedSeconds: durMs / 1000,
			TotalAmount:    total,
			PenaltyAmount:  penalty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// GetDriverBalance reports the driver's current prepaid balance.
func (s *Service) GetDriverBalance(ctx context.Context, driverEmail string) (types.Amount, error) {
	const op = "parkingService.GetDriverBalance"
	ctx = wrap.WithAction(ctx, "get_driver_balance")
	ctx = wrap.WithUserEmail(ctx, driverEmail)

	balance, err := s.drivers.GetBalance(ctx, driverEmail)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return balance, nil
}

func (s *Service) publishStarted(ctx context.Context, r *models.StartResult, driverEmail, ownerEmail string) {
	if s.events == nil {
		return
	}
	msg := models.SessionStartedMessage{
		SessionID:     r.SessionID,
		DriverEmail:   driverEmail,
		OwnerEmail:    ownerEmail,
		StartTime:     r.StartTime,
		CorrelationID: types.GetRequestID(ctx),
	}
	if err := s.events.PublishSessionStarted(ctx, msg); err != nil {
		s.log.Warn(ctx, "failed to publish session started event", "error", err)
	}
}

func (s *Service) publishStopped(ctx context.Context, r *models.SessionReceipt, driverEmail, ownerEmail string) {
	if s.events == nil {
		return
	}
	msg := models.SessionStoppedMessage{
		SessionID:       r.SessionID,
		DriverEmail:     driverEmail,
		OwnerEmail:      ownerEmail,
		DurationSeconds: r.DurationSeconds,
		TotalAmount:     r.TotalAmount,
		PenaltyAmount:   r.PenaltyAmount,
		CorrelationID:   types.GetRequestID(ctx),
	}
	if err := s.events.PublishSessionStopped(ctx, msg); err != nil {
		s.log.Warn(ctx, "failed to publish session stopped event", "error", err)
	}
}

func (s *Service) publishPaid(ctx context.Context, r *models.SessionReceipt, driverEmail, ownerEmail string) {
	if s.events == nil {
		return
	}
	msg := models.SessionPaidMessage{
		SessionID:     r.SessionID,
		DriverEmail:   driverEmail,
		OwnerEmail:    ownerEmail,
		TotalAmount:   r.TotalAmount,
		PenaltyAmount: r.PenaltyAmount,
		Timestamp:     time.Now().UTC(),
		CorrelationID: types.GetRequestID(ctx),
	}
	if err := s.events.PublishSessionPaid(ctx, msg); err != nil {
		s.log.Warn(ctx, "failed to publish session paid event", "error", err)
	}
}
