package backend

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"turfdesk/internal/config"
	"turfdesk/internal/metrics"
	"turfdesk/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const spacesCacheKey = "turfdesk:spaces"

// Client talks to the remote data service. It is safe for concurrent use.
// Calls are never retried; a failure goes back to the caller as is.
type Client struct {
	http   *resty.Client
	logger *zerolog.Logger

	mu       sync.RWMutex
	token    string
	email    string
	password string

	redis    *redis.Client
	cacheTTL time.Duration

	now func() time.Time
}

func New(cfg config.BackendConfig, logger *zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		logger:   logger,
		token:    cfg.Token,
		email:    cfg.Email,
		password: cfg.Password,
		now:      time.Now,
	}
}

// UseRedisCache включает кэширование списка площадок в Redis
func (c *Client) UseRedisCache(client *redis.Client, ttl time.Duration) {
	c.redis = client
	c.cacheTTL = ttl
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// EnsureSession logs in with the configured credentials when there is no
// usable token. It is a no-op when the token is still valid.
func (c *Client) EnsureSession(ctx context.Context) error {
	if token := c.Token(); token != "" && !c.tokenExpired(token) {
		return nil
	}
	c.mu.RLock()
	email, password := c.email, c.password
	c.mu.RUnlock()
	if email == "" || password == "" {
		return errors.Mark(errors.New("no session token and no credentials configured"), ErrUnauthorized)
	}
	_, err := c.Login(ctx, email, password)
	return err
}

// tokenExpired reads the exp claim without verifying the signature; the
// server stays the authority. Tokens that are not JWTs count as valid.
func (c *Client) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !c.now().Before(exp.Time)
}

func (c *Client) authed(ctx context.Context) (*resty.Request, error) {
	token := c.Token()
	if token == "" {
		return nil, errors.Mark(errors.New("not logged in"), ErrUnauthorized)
	}
	if c.tokenExpired(token) {
		return nil, errors.Mark(errors.New("session expired, log in again"), ErrUnauthorized)
	}
	return c.http.R().SetContext(ctx).SetAuthToken(token), nil
}

// do runs a prepared request and classifies the outcome. op names the call in
// logs and metrics.
func (c *Client) do(op string, req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		metrics.IncRemoteFailure(op)
		c.logger.Warn().Err(err).Str("op", op).Msg("Data service unreachable")
		return errors.Mark(errors.Wrap(err, op), ErrRemote)
	}
	if resp.IsError() {
		metrics.IncRemoteFailure(op)
		rerr := newRemoteError(resp.StatusCode(), resp.Body())
		c.logger.Warn().
			Str("op", op).
			Int("status", resp.StatusCode()).
			Str("message", Message(rerr)).
			Msg("Data service rejected request")
		return errors.Wrap(rerr, op)
	}
	return nil
}

func (c *Client) call(ctx context.Context, op, method, path string, prepare func(*resty.Request)) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}
	if prepare != nil {
		prepare(req)
	}
	return c.do(op, req, method, path)
}

func (c *Client) GetSpaces(ctx context.Context) ([]models.Space, error) {
	var spaces []models.Space
	if c.readCache(ctx, spacesCacheKey, &spaces) {
		return spaces, nil
	}

	err := c.call(ctx, "get_spaces", resty.MethodGet, "/spaces/", func(r *resty.Request) {
		r.SetResult(&spaces)
	})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, spacesCacheKey, spaces)
	return spaces, nil
}

func (c *Client) CreateSpace(ctx context.Context, space *models.Space) (*models.Space, error) {
	var created models.Space
	err := c.call(ctx, "create_space", resty.MethodPost, "/spaces/", func(r *resty.Request) {
		r.SetBody(space).SetResult(&created)
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, spacesCacheKey)
	return &created, nil
}

func (c *Client) UpdateSpace(ctx context.Context, space *models.Space) (*models.Space, error) {
	var updated models.Space
	err := c.call(ctx, "update_space", resty.MethodPut, "/spaces/{id}", func(r *resty.Request) {
		r.SetPathParam("id", space.ID).SetBody(space).SetResult(&updated)
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, spacesCacheKey)
	return &updated, nil
}

func (c *Client) DeleteSpace(ctx context.Context, id string) error {
	err := c.call(ctx, "delete_space", resty.MethodDelete, "/spaces/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	})
	if err != nil {
		return err
	}
	c.invalidate(ctx, spacesCacheKey)
	return nil
}

// GetBookings lists bookings, only those of date when it is set.
func (c *Client) GetBookings(ctx context.Context, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.call(ctx, "get_bookings", resty.MethodGet, "/bookings/", func(r *resty.Request) {
		if date != "" {
			r.SetQueryParam("date", date)
		}
		r.SetResult(&bookings)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := c.call(ctx, "get_booking", resty.MethodGet, "/bookings/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id).SetResult(&booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateBookingBatch commits every line of a checkout in one request. The
// server accepts or rejects the batch as a whole.
func (c *Client) CreateBookingBatch(ctx context.Context, batch *models.BatchRequest) ([]models.Booking, error) {
	var created []models.Booking
	err := c.call(ctx, "create_booking_batch", resty.MethodPost, "/bookings/batch", func(r *resty.Request) {
		r.SetBody(batch).SetResult(&created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateBookingPayment(ctx context.Context, id string, update models.PaymentUpdate) (*models.Booking, error) {
	var booking models.Booking
	err := c.call(ctx, "update_booking_payment", resty.MethodPut, "/bookings/{id}/pay", func(r *resty.Request) {
		r.SetPathParam("id", id).SetBody(update).SetResult(&booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := c.call(ctx, "cancel_booking", resty.MethodPut, "/bookings/{id}/cancel", func(r *resty.Request) {
		r.SetPathParam("id", id).SetBody(struct{}{}).SetResult(&booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetExpenses(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := c.call(ctx, "get_expenses", resty.MethodGet, "/expenses/", func(r *resty.Request) {
		r.SetResult(&expenses)
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	var created models.Expense
	err := c.call(ctx, "create_expense", resty.MethodPost, "/expenses/", func(r *resty.Request) {
		r.SetBody(expense).SetResult(&created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetStats(ctx context.Context, startDate, endDate string) (*models.Stats, error) {
	var stats models.Stats
	err := c.call(ctx, "get_stats", resty.MethodGet, "/stats", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"startDate": startDate,
			"endDate":   endDate,
		}).SetResult(&stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	var profile models.Profile
	req := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&profile)
	if err := c.do("login", req, resty.MethodPost, "/users/login"); err != nil {
		return nil, err
	}
	if err := c.remember(&profile, email, password); err != nil {
		return nil, err
	}

	c.logger.Info().Str("email", email).Msg("Logged in to data service")
	return &profile, nil
}

// Register creates the turf account and signs in with it.
func (c *Client) Register(ctx context.Context, reg *models.Registration) (*models.Profile, error) {
	var profile models.Profile
	req := c.http.R().
		SetContext(ctx).
		SetBody(reg).
		SetResult(&profile)
	if err := c.do("register", req, resty.MethodPost, "/users/"); err != nil {
		return nil, err
	}
	if err := c.remember(&profile, reg.Email, reg.Password); err != nil {
		return nil, err
	}

	c.logger.Info().Str("email", reg.Email).Str("turf", reg.TurfName).Msg("Registered on data service")
	return &profile, nil
}

// remember keeps the token and the credentials EnsureSession re-logs with.
func (c *Client) remember(profile *models.Profile, email, password string) error {
	if profile.Token == "" {
		return errors.Mark(errors.New("auth response carried no token"), ErrRemote)
	}
	c.mu.Lock()
	c.token = profile.Token
	c.email, c.password = email, password
	c.mu.Unlock()
	return nil
}

func (c *Client) UpdateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	var updated models.Profile
	err := c.call(ctx, "update_profile", resty.MethodPut, "/users/profile", func(r *resty.Request) {
		r.SetBody(profile).SetResult(&updated)
	})
	if err != nil {
		return nil, err
	}
	if updated.Token != "" {
		c.SetToken(updated.Token)
	}
	return &updated, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (c *Client) invalidate(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache invalidation failed")
	}
}
