package blockmint

/*
The api.go defines the methods that can be called from the outside.
They wrap the four HTTP routes of the ledger service. The service owns
the authoritative chain and transaction pool; this client only ever
holds transient, possibly stale, read snapshots of them.
*/

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	bc "blockmint/blockchain"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// DefaultTimeout bounds every request to the ledger service.
const DefaultTimeout = 5 * time.Second

// ErrUnknownBlock is returned when the service has no block for the
// requested digest.
var ErrUnknownBlock = xerrors.New("unknown block")

// ErrRejected is returned when the service refuses a submitted block,
// typically because its prev_hash went stale between the final head
// check and the submission.
var ErrRejected = xerrors.New("block rejected")

// Client is a structure to communicate with the ledger service.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly so tests
// can shorten timeouts.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient instantiates a new client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, xerrors.New("baseURL must not be empty")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Head returns the current chain tip and its digest.
func (c *Client) Head(ctx context.Context) (bc.BlockID, *bc.Block, error) {
	reply := &HeadReply{}
	if err := c.getJSON(ctx, "/block", nil, reply); err != nil {
		return "", nil, err
	}
	if reply.Block == nil {
		return "", nil, xerrors.New("head reply carries no block")
	}
	return reply.Hash, reply.Block, nil
}

// Block looks up a block by its digest.
func (c *Client) Block(ctx context.Context, id bc.BlockID) (*bc.Block, error) {
	reply := &BlockReply{}
	params := url.Values{"hash": []string{string(id)}}
	if err := c.getJSON(ctx, "/block", params, reply); err != nil {
		return nil, err
	}
	if reply.Block == nil {
		return nil, xerrors.Errorf("%w: %s", ErrUnknownBlock, id)
	}
	return reply.Block, nil
}

// TxPool returns the pending transactions together with the head
// digest identifying the snapshot.
func (c *Client) TxPool(ctx context.Context) (bc.BlockID, []bc.Transaction, error) {
	reply := &TxPoolReply{}
	if err := c.getJSON(ctx, "/txpool", nil, reply); err != nil {
		return "", nil, err
	}
	return reply.Hash, reply.Txs, nil
}

// Submit hands a candidate block to the service. Any non-success
// status means the block was rejected and the caller should rebuild
// from a fresh snapshot.
func (c *Client) Submit(ctx context.Context, block *bc.Block) error {
	body, err := json.Marshal(block)
	if err != nil {
		return xerrors.Errorf("marshal candidate: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/block", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return xerrors.Errorf("submit block: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return xerrors.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	log.Lvl4("GET", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return xerrors.Errorf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return xerrors.Errorf("get %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return xerrors.Errorf("decode %s reply: %v", path, err)
	}
	return nil
}
