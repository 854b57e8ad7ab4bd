package services

import (
	"context"
	"errors"

	"github.com/hivehr/hivehr/pkg/composables"
)

// Head transitions and both exchanges may only be invoked by platform
// administrators; manager and member transitions are open to any
// authenticated actor, with finer policy enforced upstream.
const (
	TransitionsAuthzObject = "hierarchy.transitions"
	ExchangesAuthzObject   = "hierarchy.exchanges"
)

var authorizeHierarchyFn = defaultAuthorizeHierarchy

func authorizeHierarchy(ctx context.Context, object string, adminOnly bool) error {
	return authorizeHierarchyFn(ctx, object, adminOnly)
}

func defaultAuthorizeHierarchy(ctx context.Context, object string, adminOnly bool) error {
	if !adminOnly {
		return nil
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		if errors.Is(err, composables.ErrNoActor) {
			return ErrForbidden
		}
		return err
	}
	switch actor.Role {
	case "admin", "super_admin":
		return nil
	}
	return ErrForbidden
}
