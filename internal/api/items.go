package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/erazemk/menjava/internal/imaging"
	"github.com/erazemk/menjava/internal/model"
)

// ItemsService covers the /items endpoints.
type ItemsService struct {
	c *Client
}

// Filter narrows an item listing. Only one criterion is applied, in this
// order: Search (optionally with Location), Category, Location, AvailableOnly.
type Filter struct {
	Search        string
	Category      model.Category
	Location      string
	AvailableOnly bool
}

// endpoint returns the path and query for the filter.
func (f Filter) endpoint() (string, url.Values) {
	search := strings.TrimSpace(f.Search)
	location := strings.TrimSpace(f.Location)

	switch {
	case search != "":
		q := url.Values{"searchTerm": {search}}
		if location != "" {
			q.Set("location", location)
		}
		return "/items/search", q
	case f.Category != "":
		return "/items/category/" + url.PathEscape(strings.ToUpper(string(f.Category))), nil
	case location != "":
		return "/items/location/" + url.PathEscape(location), nil
	case f.AvailableOnly:
		return "/items/available", nil
	default:
		return "/items", nil
	}
}

// List returns the items matching the filter.
func (s *ItemsService) List(ctx context.Context, f Filter) ([]model.Item, error) {
	path, query := f.endpoint()
	body, err := s.c.get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	items, err := model.NormalizeList(body)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// Get returns one item.
func (s *ItemsService) Get(ctx context.Context, id string) (*model.Item, error) {
	body, err := s.c.get(ctx, itemPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	item, err := model.Normalize(body)
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return item, nil
}

// Claim asks the backend to claim the item for the signed-in user.
// A nil item with a nil error means the backend accepted without a body.
func (s *ItemsService) Claim(ctx context.Context, id string) (*model.Item, error) {
	return s.mutate(ctx, itemPath(id)+"/claim")
}

// Unclaim releases the signed-in user's claim.
func (s *ItemsService) Unclaim(ctx context.Context, id string) (*model.Item, error) {
	return s.mutate(ctx, itemPath(id)+"/unclaim")
}

func (s *ItemsService) mutate(ctx context.Context, path string) (*model.Item, error) {
	body, err := s.c.do(ctx, request{method: http.MethodPut, path: path})
	if err != nil {
		return nil, err
	}
	return decodeOptionalItem(body)
}

// Create posts a new item with its photos as a multipart upload.
// The draft is validated and every photo is re-encoded first.
func (s *ItemsService) Create(ctx context.Context, d *model.Draft) (*model.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	images, err := imaging.PrepareUploads(d.Images)
	if err != nil {
		return nil, fmt.Errorf("preparing images: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"title", d.Title},
		{"description", d.Description},
		{"category", string(d.Category)},
		{"location", d.Location},
		{"type", string(d.Type)},
	}
	if d.Type == model.TypeExchange {
		fields = append(fields, struct{ name, value string }{"exchangeFor", d.ExchangeFor})
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}
	for _, img := range images {
		if err := writeImage(mw, img); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	body, err := s.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/items/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("posting item: %w", err)
	}
	return decodeOptionalItem(body)
}

func writeImage(mw *multipart.Writer, img model.Upload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, escapeQuotes(img.Name)))
	h.Set("Content-Type", img.MIME)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating image part: %w", err)
	}
	if _, err := io.Copy(part, img.Data); err != nil {
		return fmt.Errorf("writing image %s: %w", img.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Update applies an owner's edit.
func (s *ItemsService) Update(ctx context.Context, id string, u *model.ItemUpdate) (*model.Item, error) {
	req, err := jsonRequest(http.MethodPut, itemPath(id), u)
	if err != nil {
		return nil, err
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("updating item %s: %w", id, err)
	}
	return decodeOptionalItem(body)
}

// Delete removes one of the signed-in user's items.
func (s *ItemsService) Delete(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: itemPath(id)}); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// ImageURL returns where an item photo is served.
func (s *ItemsService) ImageURL(imageID string) string {
	return s.c.endpoint("/items/images/"+url.PathEscape(imageID), nil)
}

func itemPath(id string) string {
	return "/items/" + url.PathEscape(id)
}
