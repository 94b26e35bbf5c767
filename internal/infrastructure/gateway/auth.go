package gateway

import (
	"context"
	"fmt"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Data struct {
		Admin *domain.Principal `json:"admin"`
		Token string            `json:"token"`
	} `json:"data"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type verifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResetCodeResponse struct {
	Data *struct {
		ResetToken string `json:"reset_token"`
	} `json:"data"`
	Message string `json:"message"`
}

type resetPasswordRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login exchanges credentials for a token and the admin principal.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	var out loginResponse
	_, err := c.request(ctx).
		SetBody(loginRequest{Identifier: in.Identifier, Password: in.Password}).
		SetResult(&out).
		Post(pathLogin)
	if err != nil {
		return nil, fmt.Errorf("login: %w", classify(err))
	}
	return &ports.LoginResult{Admin: out.Data.Admin, Token: out.Data.Token, Message: out.Message}, nil
}

// Logout ends the upstream session. Best effort.
func (c *Client) Logout(ctx context.Context) (string, error) {
	var out messageResponse
	_, err := c.request(ctx).
		SetResult(&out).
		Delete(pathLogout)
	if err != nil {
		return "", fmt.Errorf("logout: %w", classify(err))
	}
	return out.Message, nil
}

// RequestResetCode asks the upstream to mail a reset code to email.
func (c *Client) RequestResetCode(ctx context.Context, email string) (string, error) {
	var out messageResponse
	_, err := c.request(ctx).
		SetBody(map[string]string{"email": email}).
		SetResult(&out).
		Post(pathResetCode)
	if err != nil {
		return "", fmt.Errorf("request reset code: %w", classify(err))
	}
	return out.Message, nil
}

// VerifyResetCode checks a mailed code. The reset token is empty when the
// upstream did not issue one.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) (*ports.ResetCodeResult, error) {
	var out verifyResetCodeResponse
	_, err := c.request(ctx).
		SetBody(verifyResetCodeRequest{Email: email, Code: code}).
		SetResult(&out).
		Post(pathVerifyResetCode)
	if err != nil {
		return nil, fmt.Errorf("verify reset code: %w", classify(err))
	}

	res := &ports.ResetCodeResult{Message: out.Message}
	if out.Data != nil {
		res.ResetToken = out.Data.ResetToken
	}
	return res, nil
}

// ResetPassword sets a new password, authorized by the session's reset token.
func (c *Client) ResetPassword(ctx context.Context, in ports.PasswordChangeInput) (string, error) {
	var out messageResponse
	_, err := c.request(ctx).
		SetBody(resetPasswordRequest{
			Email:                in.Email,
			Password:             in.Password,
			PasswordConfirmation: in.PasswordConfirmation,
		}).
		SetResult(&out).
		Post(pathResetPassword)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", classify(err))
	}
	return out.Message, nil
}
