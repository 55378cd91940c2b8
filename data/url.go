package data

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a database URL cannot be parsed.
var ErrInvalidURL = errors.New("invalid database url")

// Driver names.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// MemoryDatabase is the SQLite database name for an in-memory database.
const MemoryDatabase = ":memory:"

// URL is a parsed database URL.
type URL struct {
	// Scheme is the scheme as written, e.g. "postgresql+asyncpg".
	Scheme string
	// Driver is the normalised driver name.
	Driver   string
	Username string
	Password string
	// Host is host[:port]. Empty for SQLite.
	Host string
	// Database is the database name, or the file path for SQLite.
	Database string
	Query    url.Values

	parsed *url.URL
}

// ParseURL parses a SQLAlchemy-style database URL. The "+driver" suffix of the
// scheme is dropped and scheme families are normalised:
//
//	postgresql+asyncpg://u:p@localhost:5432/db  -> postgres
//	mysql+aiomysql://u:p@localhost/db           -> mysql
//	sqlite:///relative.db, sqlite:////abs.db    -> sqlite
//	sqlite://                                   -> sqlite, in memory
func ParseURL(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURL, redact(parsed))
	}

	family, _, _ := strings.Cut(strings.ToLower(parsed.Scheme), "+")
	u := &URL{
		Scheme: parsed.Scheme,
		Driver: normalizeDriver(family),
		Query:  parsed.Query(),
		parsed: parsed,
	}
	if parsed.User != nil {
		u.Username = parsed.User.Username()
		u.Password, _ = parsed.User.Password()
	}

	if u.Driver == DriverSQLite {
		if parsed.Host != "" {
			return nil, fmt.Errorf("%w: sqlite url must not name a host, use sqlite:///path", ErrInvalidURL)
		}
		u.Database = sqlitePath(parsed)
		return u, nil
	}

	if parsed.Opaque != "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, redact(parsed))
	}
	if parsed.Port() == "" && strings.HasSuffix(parsed.Host, ":") {
		return nil, fmt.Errorf("%w: empty port in %q", ErrInvalidURL, redact(parsed))
	}
	u.Host = parsed.Host
	u.Database = strings.TrimPrefix(parsed.Path, "/")
	return u, nil
}

// normalizeDriver maps scheme families onto registered driver names.
func normalizeDriver(family string) string {
	switch family {
	case "postgres", "postgresql", "pgx":
		return DriverPostgres
	case "mysql", "mariadb":
		return DriverMySQL
	case "sqlite", "sqlite3":
		return DriverSQLite
	}
	return family
}

// sqlitePath strips the single leading slash of sqlite:///path.
func sqlitePath(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return MemoryDatabase
	}
	return path
}

// IsMemory reports whether u names an in-memory SQLite database.
func (u *URL) IsMemory() bool {
	return u.Driver == DriverSQLite && u.Database == MemoryDatabase
}

// StdURL renders u with the given scheme, dropping the "+driver" suffix.
func (u *URL) StdURL(scheme string) string {
	out := *u.parsed
	out.Scheme = scheme
	return out.String()
}

// Redacted returns the URL with the password masked, for logging.
func (u *URL) Redacted() string {
	return redact(u.parsed)
}

// String implements fmt.Stringer without exposing the password.
func (u *URL) String() string {
	return u.Redacted()
}

func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}
