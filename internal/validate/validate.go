package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ        = regexp.MustCompile(`^[\p{L}\p{N} _'\-]{1,50}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUsername = regexp.MustCompile(`^[\w.@+-]{1,150}$`)
	maxPrice   = decimal.New(1, 8) // NUMERIC(10,2)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > 50 {
		s = string([]rune(s)[:50])
	}
	return s, reQ.MatchString(s)
}

// MaxCartQty caps a single cart line. Larger integers, including ones that
// overflow int, are clamped to it.
const MaxCartQty = 1_000_000

// CartQty parses a requested cart quantity. Unparseable input falls back to 1;
// negative numbers clamp to 0, which callers treat as removal.
func CartQty(s string) int {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	switch {
	case errors.Is(err, strconv.ErrRange):
		if strings.HasPrefix(s, "-") {
			return 0
		}
		return MaxCartQty
	case err != nil:
		return 1
	case n < 0:
		return 0
	case n > MaxCartQty:
		return MaxCartQty
	}
	return n
}

// ID validates a simple resource identifier (product/order/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password enforces a length window and character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// Price accepts non-negative amounts with at most two decimal places.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, false
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

func maxLen(s string, n int) bool { return utf8.RuneCountInString(s) <= n }

// Shipping checks the checkout form: full name and address are required,
// phone and note are optional.
func Shipping(fullName, address, phone, note string) (domain.Shipping, error) {
	s := domain.Shipping{
		FullName: strings.TrimSpace(fullName),
		Address:  strings.TrimSpace(address),
		Phone:    strings.TrimSpace(phone),
		Note:     strings.TrimSpace(note),
	}
	v := domain.NewValidationError()
	v.Check(s.FullName != "", "full_name", "must be provided")
	v.Check(maxLen(s.FullName, 200), "full_name", "must not be more than 200 characters")
	v.Check(s.Address != "", "address", "must be provided")
	v.Check(maxLen(s.Phone, 50), "phone", "must not be more than 50 characters")
	return s, v.Err()
}

type Registration struct {
	Username     string
	Email        string
	ConfirmEmail string
	Password1    string
	Password2    string
}

// Check validates field formats. Cross-field and uniqueness rules belong to
// the account service.
func (f *Registration) Check() error {
	v := domain.NewValidationError()
	var ok bool
	f.Username, ok = Username(f.Username)
	v.Check(f.Username != "", "username", "must be provided")
	v.Check(ok, "username", "letters, digits and @/./+/-/_ only, at most 150 characters")
	f.Email, ok = Email(f.Email)
	v.Check(ok, "email", "must be a valid email address")
	f.ConfirmEmail = strings.TrimSpace(f.ConfirmEmail)
	v.Check(f.ConfirmEmail != "", "confirm_email", "must be provided")
	v.Check(Password(f.Password1), "password1", "8-64 characters with upper, lower, digit and symbol")
	v.Check(f.Password2 != "", "password2", "must be provided")
	return v.Err()
}

type ProductForm struct {
	Name        string
	Description string
	Category    string
	Price       string
	Rating      string
}

// Parse validates the seller form and returns the editable product fields.
func (f ProductForm) Parse() (domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
	}
	v := domain.NewValidationError()
	v.Check(p.Name != "", "name", "must be provided")
	v.Check(maxLen(p.Name, 100), "name", "must not be more than 100 characters")
	v.Check(p.Description != "", "description", "must be provided")
	v.Check(p.Category != "", "category", "must be provided")
	v.Check(maxLen(p.Category, 50), "category", "must not be more than 50 characters")
	v.Check(!strings.EqualFold(p.Category, "All"), "category", "is reserved")

	price, ok := Price(f.Price)
	v.Check(ok, "price", "must be a non-negative amount with at most 2 decimals")
	p.Price = domain.MoneyOf(price)

	if r := strings.TrimSpace(f.Rating); r != "" {
		n, err := strconv.Atoi(r)
		v.Check(err == nil && n >= 0 && n <= 5, "rating", "must be between 0 and 5")
		p.Rating = n
	}
	return p, v.Err()
}
