package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	maxKlinesPerRequest = 1500
)

// Client implements the ports.BarProvider interface using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // Overrides the production/testnet URL when set
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	// Klines are public; keys only raise the rate limit.
	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Debug(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	return &Client{futuresClient: client, logger: cfg.Logger}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature or API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1120, -1121, -1125, -1127, -1128, -1130:
			// Parameter/Request format errors, including unknown symbols and intervals
			mappedErr = ports.ErrInvalidRequest
		case -1000, -1001, -1007: // Unknown, disconnected, timeout waiting for backend
			mappedErr = ports.ErrExchangeUnavailable
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, err, op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetBarsRange fetches all klines for a symbol/interval opening in [start, end],
// paging through the exchange limit.
func (c *Client) GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	op := "GetBarsRange"
	if !end.After(start) {
		return nil, fmt.Errorf("%s: %w: end %s is not after start %s",
			op, ports.ErrInvalidRequest, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	var bars []*domain.Bar
	from := start
	for page := 1; ; page++ {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxKlinesPerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		for _, bk := range klines {
			bar, err := translateBinanceKline(bk)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
			}
			if n := len(bars); n > 0 && !bar.Time.After(bars[n-1].Time) {
				continue // overlapping page
			}
			bars = append(bars, bar)
		}
		c.logger.Debug(ctx, "Fetched kline page", map[string]interface{}{
			"symbol": symbol, "interval": interval, "page": page, "klines": len(klines),
		})

		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime + 1)
		if from.After(end) || len(klines) < maxKlinesPerRequest {
			break
		}
	}

	return bars, nil
}

// --- Translation Helpers ---

func translateBinanceKline(bk *futures.Kline) (*domain.Bar, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.Bar{
		Time:   time.UnixMilli(bk.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: vol,
	}, nil
}
