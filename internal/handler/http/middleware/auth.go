package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// WithActor stores the authenticated actor on ctx.
func WithActor(ctx context.Context, actor leave.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by AuthRequired.
func ActorFromContext(ctx context.Context) (leave.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(leave.Actor)
	return actor, ok
}

// AuthRequired accepts verified access tokens and turns their claims into
// a leave.Actor for the handlers below.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			response.Unauthorized(w, "employee_id claim is missing or invalid")
			return
		}

		roleStr, _ := claims["role"].(string)
		role := user.Role(roleStr)
		if !role.IsValid() {
			response.Unauthorized(w, "role claim is missing or invalid")
			return
		}

		ctx := WithActor(r.Context(), leave.Actor{EmployeeID: employeeID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hfn)
}
