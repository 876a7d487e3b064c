package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auditdesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

// Cognito delegates password checks to a Cognito user pool. Roles still come
// from the local users table, matched on email.
type Cognito struct {
	client   CognitoAPI
	clientID string
	users    UserLookup
	jwks     *jwk.Cache
	jwksURL  string
}

func NewCognito(ctx context.Context, client CognitoAPI, clientID, issuerURL string, users UserLookup) (*Cognito, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", strings.TrimSuffix(issuerURL, "/"))
	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	return &Cognito{
		client:   client,
		clientID: clientID,
		users:    users,
		jwks:     cache,
		jwksURL:  jwksURL,
	}, nil
}

func (c *Cognito) Login(ctx context.Context, email, password string) (*types.TokenPair, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	resp, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.IdToken == nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := c.users.UserByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInactiveUser
	}

	result := resp.AuthenticationResult
	return &types.TokenPair{
		AccessToken:  aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    int(result.ExpiresIn),
	}, user, nil
}

func (c *Cognito) Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	resp, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.IdToken == nil {
		return nil, ErrInvalidToken
	}

	return &types.TokenPair{
		AccessToken: aws.ToString(resp.AuthenticationResult.IdToken),
		ExpiresIn:   int(resp.AuthenticationResult.ExpiresIn),
	}, nil
}

func (c *Cognito) Verify(ctx context.Context, accessToken string) (*types.Identity, error) {
	set, err := c.jwks.Lookup(ctx, c.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(accessToken), jwt.WithKeySet(set), jwt.WithValidate(true))
	if err != nil {
		return nil, ErrInvalidToken
	}

	var email string
	if err := token.Get("email", &email); err != nil || email == "" {
		return nil, ErrInvalidToken
	}

	user, err := c.users.UserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return &types.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}
