package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/resilience"
)

// LDAPConn is the subset of *ldap.Conn used by the directory client.
type LDAPConn interface {
	Bind(username, password string) error
	Search(request *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// LDAPDialer opens a connection to the directory.
type LDAPDialer func(ctx context.Context, url string, timeout time.Duration) (LDAPConn, error)

// LDAPConfig configures the directory client.
type LDAPConfig struct {
	URL            string
	BindDN         string
	BindPassword   string //nolint:gosec // service account credential
	BaseDN         string
	UserFilter     string
	GroupAttribute string
	Timeout        time.Duration
}

type ldapClient struct {
	config LDAPConfig
	policy *resilience.Policy
	dial   LDAPDialer
}

// NewLDAPClient creates a DirectoryClient. Every bind and search runs under policy, which is
// expected to carry the shared directory circuit breaker. A nil dial uses ldap.DialURL.
func NewLDAPClient(config LDAPConfig, policy *resilience.Policy, dial LDAPDialer) DirectoryClient {
	if dial == nil {
		dial = dialLDAP
	}
	if config.UserFilter == "" {
		config.UserFilter = "(uid=%s)"
	}
	return &ldapClient{config: config, policy: policy, dial: dial}
}

func dialLDAP(_ context.Context, url string, timeout time.Duration) (LDAPConn, error) {
	conn, err := ldap.DialURL(url,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		ldap.DialWithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
	)
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(timeout)
	return conn, nil
}

// Authenticate finds the account's entry with the service account and binds as that entry.
// An unknown account or a wrong password yields ErrAuthenticationFailed; transport failures
// are retried and surface as resilience.ErrUnavailable once the policy gives up.
func (c *ldapClient) Authenticate(
	ctx context.Context,
	account, password string,
) (*authDomain.DirectoryEntry, error) {
	// An empty password would be an unauthenticated bind, which directories accept.
	if account == "" || password == "" {
		return nil, authDomain.ErrAuthenticationFailed
	}

	return resilience.Execute(ctx, c.policy, func(ctx context.Context) (*authDomain.DirectoryEntry, error) {
		return c.authenticate(ctx, account, password)
	})
}

func (c *ldapClient) authenticate(
	ctx context.Context,
	account, password string,
) (*authDomain.DirectoryEntry, error) {
	conn, err := c.dial(ctx, c.config.URL, c.config.Timeout)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("failed to dial directory: %w", err))
	}
	defer func() { _ = conn.Close() }()

	if c.config.BindDN != "" {
		if err := conn.Bind(c.config.BindDN, c.config.BindPassword); err != nil {
			return nil, classifyLDAPError(fmt.Errorf("failed to bind service account: %w", err))
		}
	}

	attributes := []string{"dn", "uid", "mail", "cn", c.config.GroupAttribute}
	request := ldap.NewSearchRequest(
		c.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		int(c.config.Timeout/time.Second),
		false,
		fmt.Sprintf(c.config.UserFilter, ldap.EscapeFilter(account)),
		attributes,
		nil,
	)

	result, err := conn.Search(request)
	if err != nil {
		return nil, classifyLDAPError(fmt.Errorf("failed to search directory: %w", err))
	}
	if len(result.Entries) != 1 {
		return nil, resilience.Rejection(authDomain.ErrAuthenticationFailed)
	}
	entry := result.Entries[0]

	if err := conn.Bind(entry.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, resilience.Rejection(authDomain.ErrAuthenticationFailed)
		}
		return nil, classifyLDAPError(fmt.Errorf("failed to bind user: %w", err))
	}

	return &authDomain.DirectoryEntry{
		DN:      entry.DN,
		Account: account,
		Email:   entry.GetAttributeValue("mail"),
		Name:    entry.GetAttributeValue("cn"),
		Groups:  entry.GetAttributeValues(c.config.GroupAttribute),
	}, nil
}

// classifyLDAPError marks network level failures as transient.
func classifyLDAPError(err error) error {
	if ldap.IsErrorAnyOf(err, ldap.ErrorNetwork, ldap.LDAPResultBusy, ldap.LDAPResultUnavailable, ldap.LDAPResultTimeLimitExceeded) {
		return resilience.Transient(err)
	}
	return err
}
