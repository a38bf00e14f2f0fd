package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var (
	// ErrInvalidInitData is returned when the init data signature does not verify.
	ErrInvalidInitData = errors.New("init data signature is invalid")
	// ErrNoUser is returned when the init data carries no user object.
	ErrNoUser = errors.New("init data carries no user")
)

// VerifyInitData checks the HMAC signature of a Telegram WebApp initData
// blob against the bot token. The secret key is HMAC-SHA256 of the token
// keyed with "WebAppData"; the signature covers the url-decoded
// key=value pairs sorted by key, excluding the hash itself.
func VerifyInitData(initData, botToken string) error {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return fmt.Errorf("failed to parse init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return ErrInvalidInitData
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(gotHash), []byte(wantHash)) {
		return ErrInvalidInitData
	}
	return nil
}

// UserID extracts the Telegram user ID from a verified initData blob.
func UserID(initData string) (int64, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("failed to parse init data: %w", err)
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return 0, ErrNoUser
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err = json.Unmarshal([]byte(userJSON), &user); err != nil {
		return 0, fmt.Errorf("failed to decode init data user: %w", err)
	}
	if user.ID == 0 {
		return 0, ErrNoUser
	}

	return user.ID, nil
}
