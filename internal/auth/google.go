package auth

import (
	"context"
	"fmt"

	oauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleIdentity is the verified subject of a Google ID token.
type GoogleIdentity struct {
	Email   string
	Subject string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type tokenInfoVerifier struct {
	service  *oauth2.Service
	clientID string
}

// NewGoogleVerifier checks ID tokens against Google's tokeninfo endpoint.
// When clientID is set the token audience must match it.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (GoogleVerifier, error) {
	opts = append([]option.ClientOption{option.WithoutAuthentication()}, opts...)
	svc, err := oauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}
	return &tokenInfoVerifier{service: svc, clientID: clientID}, nil
}

func (v *tokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	info, err := v.service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidGoogleToken)
	}
	if v.clientID != "" && info.Audience != v.clientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidGoogleToken)
	}
	return &GoogleIdentity{Email: info.Email, Subject: info.UserId}, nil
}
