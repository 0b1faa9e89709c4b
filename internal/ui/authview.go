package ui

import (
	"context"
	"regexp"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// minPasswordLen is the minimum accepted password length on signup.
const minPasswordLen = 8

// ValidateLogin returns the inline messages blocking a login
// submission; empty means the form may be submitted.
func ValidateLogin(email, password string) []string {
	var errs []string
	if email == "" {
		errs = append(errs, "Email address is required.")
	}
	if password == "" {
		errs = append(errs, "Password is required.")
	}
	return errs
}

// ValidateSignup returns the inline messages blocking a signup
// submission. Validation errors never reach the network layer.
func ValidateSignup(name, email, password, confirm string) []string {
	var errs []string
	if name == "" {
		errs = append(errs, "Full name is required.")
	}
	if email == "" {
		errs = append(errs, "Email address is required.")
	} else if !emailRe.MatchString(email) {
		errs = append(errs, "Email address is not valid.")
	}
	if password == "" {
		errs = append(errs, "Password is required.")
	} else if len(password) < minPasswordLen {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	if password != confirm {
		errs = append(errs, "Passwords do not match.")
	}
	return errs
}

// Login prompts for credentials, exchanges them for a token and
// stores it. Auth failures are shown to the user, unlike the silent
// logging of the session flows.
func (a *App) Login(ctx context.Context) error {
	t := a.Theme
	a.println()
	a.println(t.Title.Render("Login to Your Account"))

	email, ok := a.prompt("Email Address: ")
	if !ok {
		return nil
	}
	password, ok := a.prompt("Password: ")
	if !ok {
		return nil
	}

	if errs := ValidateLogin(email, password); len(errs) > 0 {
		for _, e := range errs {
			a.notice(e)
		}
		return nil
	}

	token, err := a.API.Login(ctx, email, password)
	if err != nil {
		a.Logger.Error("login failed", "error", err)
		a.notice("Your email or password is incorrect.")
		return err
	}

	if err := a.Auth.SetToken(token); err != nil {
		a.notice("Logged in, but the session could not be saved.")
		return err
	}

	a.println(t.Success.Render("Logged in. Run `bopchat chat` to start chatting."))
	return nil
}

// Signup prompts for account details and registers them after
// client-side validation passes.
func (a *App) Signup(ctx context.Context) error {
	t := a.Theme
	a.println()
	a.println(t.Title.Render("Create Account"))

	name, ok := a.prompt("Full Name: ")
	if !ok {
		return nil
	}
	email, ok := a.prompt("Email Address: ")
	if !ok {
		return nil
	}
	password, ok := a.prompt("Password: ")
	if !ok {
		return nil
	}
	confirm, ok := a.prompt("Confirm Password: ")
	if !ok {
		return nil
	}

	if errs := ValidateSignup(name, email, password, confirm); len(errs) > 0 {
		for _, e := range errs {
			a.notice(e)
		}
		return nil
	}

	if err := a.API.Signup(ctx, name, email, password); err != nil {
		a.Logger.Error("signup failed", "error", err)
		a.notice("Could not create the account. Please try again.")
		return err
	}

	a.println(t.Success.Render("Account created. Run `bopchat login` to log in."))
	return nil
}
