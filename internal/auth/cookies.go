package auth

import (
	"net/http"
)

// Cookie names as seen by the front end
const (
	AuthTokenCookie    = "authToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

// SetAuthTokenCookie sets the access token in an httpOnly cookie
func SetAuthTokenCookie(w http.ResponseWriter, token string, maxAge int, config CookieConfig) {
	setTokenCookie(w, AuthTokenCookie, token, maxAge, config)
}

// SetRefreshTokenCookie sets the refresh token in an httpOnly cookie
func SetRefreshTokenCookie(w http.ResponseWriter, refreshToken string, maxAge int, config CookieConfig) {
	setTokenCookie(w, RefreshTokenCookie, refreshToken, maxAge, config)
}

// ClearAuthCookies clears both token cookies. Safe to call when no cookies
// are set; logout stays idempotent.
func ClearAuthCookies(w http.ResponseWriter, config CookieConfig) {
	// Negative MaxAge emits Max-Age=0 on the wire, deleting the cookie
	setTokenCookie(w, AuthTokenCookie, "", -1, config)
	setTokenCookie(w, RefreshTokenCookie, "", -1, config)
}

// GetRefreshTokenCookie retrieves the refresh token from cookies
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func setTokenCookie(w http.ResponseWriter, name, value string, maxAge int, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true, // prevents JavaScript access (XSS protection)
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
