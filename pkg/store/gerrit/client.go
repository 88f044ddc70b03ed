package gerrit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/russellb/gerrymander/pkg/models/review"
)

// Config describes the SSH endpoint of a Gerrit server.
type Config struct {
	Host    string
	Port    int
	User    string
	KeyFile string
	Timeout time.Duration
}

// Client runs gerrit queries over SSH. It implements the report package's
// Querier interface.
type Client struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClient returns a query client for the given server.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Port == 0 {
		cfg.Port = 29418
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, logger: logger}
}

func (c *Client) dial() (*ssh.Client, error) {
	key, err := os.ReadFile(c.cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key %q: %w", c.cfg.KeyFile, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %q: %w", c.cfg.KeyFile, err)
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}

// Query executes the spec against the server and invokes fn once per
// matching change. Result pages are followed transparently via
// resume_sortkey until the server returns a short page.
func (c *Client) Query(ctx context.Context, spec review.QuerySpec, fn func(*review.Change) error) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	resumeKey := ""
	for {
		page, err := c.runPage(ctx, conn, spec, resumeKey, fn)
		if err != nil {
			return err
		}
		if page.rowCount == 0 || page.lastSortKey == "" || page.lastSortKey == resumeKey {
			return nil
		}
		resumeKey = page.lastSortKey
	}
}

type pageResult struct {
	rowCount    int
	lastSortKey string
}

func (c *Client) runPage(ctx context.Context, conn *ssh.Client, spec review.QuerySpec, resumeKey string, fn func(*review.Change) error) (pageResult, error) {
	var page pageResult

	session, err := conn.NewSession()
	if err != nil {
		return page, fmt.Errorf("failed to open ssh session: %w", err)
	}
	defer session.Close()

	stdout, err := session.StdoutPipe()
	if err != nil {
		return page, fmt.Errorf("failed to attach to session output: %w", err)
	}

	cmd := buildQueryCommand(spec, resumeKey)
	c.logger.Debug().Str("command", cmd).Msg("running gerrit query")
	if err := session.Start(cmd); err != nil {
		return page, fmt.Errorf("failed to run gerrit query: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return page, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row wireChange
		if err := json.Unmarshal(line, &row); err != nil {
			c.logger.Error().Err(err).Msg("skipping malformed query row")
			continue
		}
		switch row.Type {
		case "stats":
			page.rowCount = row.RowCount
			continue
		case "error":
			return page, fmt.Errorf("gerrit query failed: %s", row.Message)
		}

		page.lastSortKey = row.SortKey
		if err := fn(row.toModel()); err != nil {
			return page, err
		}
	}
	if err := scanner.Err(); err != nil {
		return page, fmt.Errorf("failed to read query output: %w", err)
	}
	if err := session.Wait(); err != nil {
		return page, fmt.Errorf("gerrit query exited: %w", err)
	}
	return page, nil
}
