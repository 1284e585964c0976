package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldmarshal/career-league/internal/domain/user"
	"github.com/fieldmarshal/career-league/internal/usecase"
)

// StaticTokenVerifier maps pre-shared opaque tokens to principals. It backs
// local and single-box deployments where no identity provider is running.
// Entries come from configuration as "token:userID:name" triples.
type StaticTokenVerifier struct {
	byToken map[string]user.Principal
}

func NewStaticTokenVerifier(entries []string) (*StaticTokenVerifier, error) {
	byToken := make(map[string]user.Principal, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("static token entry %q must be token:userID or token:userID:name", entry)
		}

		token := strings.TrimSpace(parts[0])
		userID := strings.TrimSpace(parts[1])
		if token == "" || userID == "" {
			return nil, fmt.Errorf("static token entry %q has an empty token or user id", entry)
		}
		if _, exists := byToken[token]; exists {
			return nil, fmt.Errorf("static token entry %q duplicates an earlier token", entry)
		}

		principal := user.Principal{UserID: userID}
		if len(parts) == 3 {
			principal.Name = strings.TrimSpace(parts[2])
		}
		byToken[token] = principal
	}

	return &StaticTokenVerifier{byToken: byToken}, nil
}

func (v *StaticTokenVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.byToken[strings.TrimSpace(token)]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown access token", usecase.ErrUnauthorized)
	}
	return principal, nil
}
