package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tablesidear/api/internal/enum"
)

// maxARModelBytes is the largest model the viewer will try to load.
const maxARModelBytes = 25 << 20

var (
	ErrARModelMissingURL   = errors.New("AR model enabled but no model URLs provided")
	ErrARModelURLsNotEmpty = errors.New("disabling AR requires clearing AR model URLs")
)

// ARInput is the AR part of a menu item write. nil fields were not supplied.
type ARInput struct {
	HasArModel        *bool
	ArModelUrl        *string
	ArModelUrlIos     *string
	ArModelUrlAndroid *string
	ArThumbnail       *string
}

func (in ARInput) provided() bool {
	return in.HasArModel != nil || in.ArModelUrl != nil || in.ArModelUrlIos != nil ||
		in.ArModelUrlAndroid != nil || in.ArThumbnail != nil
}

// ARModel is the stored AR state of a menu item.
type ARModel struct {
	HasArModel        bool
	ArModelUrl        pgtype.Text
	ArModelUrlIos     pgtype.Text
	ArModelUrlAndroid pgtype.Text
	ArThumbnail       pgtype.Text
}

func (m ARModel) hasAnyURL() bool {
	return m.ArModelUrl.Valid || m.ArModelUrlIos.Valid || m.ArModelUrlAndroid.Valid
}

// ResolveARModel applies in on top of current and checks that the result
// keeps the AR invariant: the flag is set exactly when some model URL is.
// Blank strings clear a field. When the flag is omitted but a URL is given,
// the flag is switched on.
func ResolveARModel(current ARModel, in ARInput) (ARModel, error) {
	if !in.provided() {
		return current, nil
	}

	out := current
	urlGiven := false
	apply := func(dst *pgtype.Text, v *string, isURL bool) {
		if v == nil {
			return
		}
		*dst = normalizeText(*v)
		if isURL && dst.Valid {
			urlGiven = true
		}
	}
	apply(&out.ArModelUrl, in.ArModelUrl, true)
	apply(&out.ArModelUrlIos, in.ArModelUrlIos, true)
	apply(&out.ArModelUrlAndroid, in.ArModelUrlAndroid, true)
	apply(&out.ArThumbnail, in.ArThumbnail, false)

	switch {
	case in.HasArModel != nil:
		out.HasArModel = *in.HasArModel
	case urlGiven:
		out.HasArModel = true
	}

	if out.HasArModel && !out.hasAnyURL() {
		return ARModel{}, ErrARModelMissingURL
	}
	if !out.HasArModel && out.hasAnyURL() {
		return ARModel{}, ErrARModelURLsNotEmpty
	}
	return out, nil
}

func normalizeText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ARReadiness tells a device whether it can open an item's AR model.
type ARReadiness struct {
	IsReady          bool
	SupportedFormats []string
	Reason           string
	ModelURL         string
	ThumbnailURL     string
}

// ModelSizer reports the size of a remote model in bytes. ok is false when
// the size is unknown.
type ModelSizer interface {
	ModelSize(ctx context.Context, url string) (size int64, ok bool, err error)
}

// HTTPModelSizer asks the asset host with a HEAD request.
type HTTPModelSizer struct {
	Client *http.Client
}

// NewHTTPModelSizer creates a sizer with a short timeout.
func NewHTTPModelSizer() *HTTPModelSizer {
	return &HTTPModelSizer{Client: &http.Client{Timeout: 5 * time.Second}}
}

func (s *HTTPModelSizer) ModelSize(ctx context.Context, url string) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("build head request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("head model: %w", err)
	}
	resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, false, nil
	}
	return resp.ContentLength, true, nil
}

// CheckARReadiness picks the model that fits the device named by userAgent.
// iOS prefers the USDZ build, Android the GLB build, and anything else falls
// back to the generic model. A size check that fails is ignored.
func CheckARReadiness(ctx context.Context, m ARModel, userAgent string, sizer ModelSizer) ARReadiness {
	if !m.HasArModel {
		return ARReadiness{SupportedFormats: []string{}, Reason: "No AR model available"}
	}

	isIOS := strings.Contains(userAgent, "iPhone") || strings.Contains(userAgent, "iPad") || strings.Contains(userAgent, "iPod")
	isAndroid := strings.Contains(userAgent, "Android")

	var modelURL string
	var formats []string
	switch {
	case isIOS && m.ArModelUrlIos.Valid:
		modelURL = m.ArModelUrlIos.String
		formats = []string{enum.ARFormatUSDZ}
	case isAndroid && m.ArModelUrlAndroid.Valid:
		modelURL = m.ArModelUrlAndroid.String
		formats = []string{enum.ARFormatGLB}
	case m.ArModelUrl.Valid:
		modelURL = m.ArModelUrl.String
		formats = []string{enum.ARFormatGLB, enum.ARFormatUSDZ}
	default:
		return ARReadiness{SupportedFormats: []string{}, Reason: "No compatible AR model for this device"}
	}

	if sizer != nil {
		if size, ok, err := sizer.ModelSize(ctx, modelURL); err == nil && ok && size > maxARModelBytes {
			return ARReadiness{SupportedFormats: formats, Reason: "AR model exceeds size limit (25MB)"}
		}
	}

	return ARReadiness{
		IsReady:          true,
		SupportedFormats: formats,
		ModelURL:         modelURL,
		ThumbnailURL:     m.ArThumbnail.String,
	}
}
