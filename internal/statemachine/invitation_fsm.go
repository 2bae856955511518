package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/modular-erp-api/internal/models"
)

// Invitation transition errors
var (
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrInvitationExpired    = errors.New("invitation has expired")
)

// InvitationFSM wraps a user invitation with its state machine
type InvitationFSM struct {
	invitation *models.UserInvitation
	fsm        *fsm.FSM
}

// NewInvitationFSM creates a new invitation state machine
func NewInvitationFSM(invitation *models.UserInvitation) *InvitationFSM {
	ifsm := &InvitationFSM{
		invitation: invitation,
	}

	ifsm.fsm = fsm.NewFSM(
		invitation.Status,
		fsm.Events{
			{Name: "accept", Src: []string{models.InvitationStatusPending}, Dst: models.InvitationStatusAccepted},
			{Name: "cancel", Src: []string{models.InvitationStatusPending}, Dst: models.InvitationStatusCancelled},
			{Name: "expire", Src: []string{models.InvitationStatusPending}, Dst: models.InvitationStatusExpired},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Accept marks a pending, unexpired invitation as accepted
func (i *InvitationFSM) Accept(ctx context.Context, now time.Time) error {
	if i.invitation.Status != models.InvitationStatusPending {
		return ErrInvitationNotPending
	}
	if i.invitation.IsExpired(now) {
		if err := i.Expire(ctx); err != nil {
			return err
		}
		return ErrInvitationExpired
	}

	if err := i.fsm.Event(ctx, "accept"); err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}

	i.invitation.Status = i.fsm.Current()
	i.invitation.AcceptedAt = &now
	return nil
}

// Cancel withdraws a pending invitation
func (i *InvitationFSM) Cancel(ctx context.Context) error {
	if i.invitation.Status != models.InvitationStatusPending {
		return ErrInvitationNotPending
	}

	if err := i.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	i.invitation.Status = i.fsm.Current()
	return nil
}

// Expire marks a pending invitation as expired
func (i *InvitationFSM) Expire(ctx context.Context) error {
	if err := i.fsm.Event(ctx, "expire"); err != nil {
		return fmt.Errorf("failed to expire invitation: %w", err)
	}

	i.invitation.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InvitationFSM) Current() string {
	return i.fsm.Current()
}
