package usecase

import (
	"context"
	"errors"

	"github.com/iho/jointledger/internal/domain"
)

// authorizeAccount allows the caller's own personal accounts and the joint
// account the caller belongs to.
func authorizeAccount(ctx context.Context, directory AccountDirectory, caller domain.Caller, account *domain.Account) error {
	if caller.PartyID == "" {
		return domain.ErrForbidden
	}

	if account.OwnedBy(caller.PartyID) {
		return nil
	}

	if !account.IsJoint() {
		return domain.ErrForbidden
	}

	return requireJointAccount(ctx, directory, caller, account.ID)
}

// requireJointAccount allows only the caller's own joint account.
func requireJointAccount(ctx context.Context, directory AccountDirectory, caller domain.Caller, accountID string) error {
	if caller.PartyID == "" {
		return domain.ErrForbidden
	}

	joint, err := directory.JointAccountFor(ctx, caller.PartyID)
	if err != nil {
		if errors.Is(err, domain.ErrNoJointAccount) {
			return domain.ErrForbidden
		}
		return err
	}

	if joint.ID != accountID {
		return domain.ErrForbidden
	}

	return nil
}
