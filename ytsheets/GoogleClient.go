package ytsheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/youtube/v3"
)

// Session - авторизованные клиенты трёх API, создаётся один раз за запуск
type Session struct {
	YouTube *youtube.Service
	Sheets  *sheets.Service
	Drive   *drive.Service
}

// NewSession - собрать сервисы поверх одного http-клиента
func NewSession(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*Session, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	yt, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	sh, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	dr, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Session{YouTube: yt, Sheets: sh, Drive: dr}, nil
}

// Authorizer - OAuth2 installed-app: секрет из файла, токен кешируется в json
type Authorizer struct {
	config    *oauth2.Config
	tokenFile string
	// AuthCode - получить код авторизации по ссылке; по умолчанию локальный redirect-сервер
	AuthCode func(ctx context.Context, config *oauth2.Config) (string, error)
	log      zerolog.Logger
}

// NewAuthorizer - чтение секретки из файла
func NewAuthorizer(cfg *Config, log zerolog.Logger) (*Authorizer, error) {
	b, err := os.ReadFile(cfg.CredentialFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read client secret file: %v", ErrConfig, err)
	}
	config, err := google.ConfigFromJSON(b, cfg.ScopeURLs()...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret file: %v", ErrConfig, err)
	}
	var a = &Authorizer{config: config, tokenFile: cfg.TokenFile, log: log}
	a.AuthCode = a.loopbackCode
	return a, nil
}

// Client - http-клиент с обновляемым токеном. Обновлённый токен сохраняется в файл
func (a *Authorizer) Client(ctx context.Context) (*http.Client, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}
	if !token.Valid() {
		refreshed, err := a.config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		token = refreshed
		a.log.Info().Msg("token refresh")
		if err := a.saveToken(token); err != nil {
			return nil, err
		}
	}
	return a.config.Client(ctx, token), nil
}

// чтение токена из файла, при отсутствии - новая авторизация
func (a *Authorizer) token(ctx context.Context) (*oauth2.Token, error) {
	f, err := os.Open(a.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		token, err := a.createToken(ctx)
		if err != nil {
			return nil, err
		}
		return token, a.saveToken(token)
	}
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	var token = new(oauth2.Token)
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", a.tokenFile, err)
	}
	return token, nil
}

func (a *Authorizer) createToken(ctx context.Context) (*oauth2.Token, error) {
	code, err := a.AuthCode(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func (a *Authorizer) saveToken(token *oauth2.Token) error {
	f, err := os.OpenFile(a.tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	a.log.Debug().Str("file", a.tokenFile).Msg("token saved")
	return nil
}

// loopbackCode - redirect на 127.0.0.1 со свободным портом, код забирается из запроса
func (a *Authorizer) loopbackCode(ctx context.Context, config *oauth2.Config) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer ln.Close()
	var state = fmt.Sprintf("state-%d", os.Getpid())
	var result = make(chan string, 1)
	var srv = &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete, you can close this window.")
		select {
		case result <- r.URL.Query().Get("code"):
		default:
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	var local = *config
	local.RedirectURL = "http://" + ln.Addr().String()
	fmt.Printf("Open the following link in your browser to authorize access:\n%v\n", local.AuthCodeURL(state, oauth2.AccessTypeOffline))
	select {
	case code := <-result:
		config.RedirectURL = local.RedirectURL
		if code == "" {
			return "", errors.New("empty authorization code")
		}
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
