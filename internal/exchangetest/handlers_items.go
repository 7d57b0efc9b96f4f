package exchangetest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/menjava/internal/model"
)

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(nil))
}

func (s *Server) listAvailable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool {
		return it.Status == string(model.StatusAvailable)
	}))
}

func (s *Server) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.ToUpper(chi.URLParam(r, "category"))
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool {
		return it.Category == category
	}))
}

func (s *Server) listByLocation(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool {
		return strings.EqualFold(it.Location, location)
	}))
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("searchTerm"))
	location := r.URL.Query().Get("location")
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool {
		if location != "" && !strings.EqualFold(it.Location, location) {
			return false
		}
		return strings.Contains(strings.ToLower(it.Title), term) ||
			strings.Contains(strings.ToLower(it.Description), term)
	}))
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if it == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, s.itemJSON(it))
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}
	s.mu.Lock()
	data, found := s.images[id]
	s.mu.Unlock()
	if !found {
		jsonError(w, http.StatusNotFound, "Image not found")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

func (s *Server) uploadItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.ToUpper(r.FormValue("category"))
	itemType := strings.ToUpper(r.FormValue("type"))
	if title == "" || !model.ValidCategory(model.Category(category)) {
		jsonError(w, http.StatusBadRequest, "title and a valid category are required")
		return
	}
	if itemType == string(model.TypeExchange) && strings.TrimSpace(r.FormValue("exchangeFor")) == "" {
		jsonError(w, http.StatusBadRequest, "exchangeFor is required for exchange items")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) < model.MinImages || len(files) > model.MaxImages {
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("between %d and %d images required", model.MinImages, model.MaxImages))
		return
	}

	var blobs [][]byte
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "unreadable image")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "unreadable image")
			return
		}
		if ct := http.DetectContentType(data); ct != "image/jpeg" {
			jsonError(w, http.StatusBadRequest, "images must be JPEG, got "+ct)
			return
		}
		blobs = append(blobs, data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := &Item{
		ID:          s.id(),
		Title:       title,
		Description: r.FormValue("description"),
		Category:    category,
		Location:    r.FormValue("location"),
		Type:        itemType,
		ExchangeFor: r.FormValue("exchangeFor"),
		Status:      string(model.StatusAvailable),
		OwnerID:     u.ID,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	for _, b := range blobs {
		img := s.id()
		s.images[img] = b
		it.ImageIDs = append(it.ImageIDs, img)
	}
	s.items[it.ID] = it
	jsonResponse(w, http.StatusCreated, s.itemJSON(it))
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	ExchangeFor *string `json:"exchangeFor"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if it == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if it.OwnerID != u.ID {
		jsonError(w, http.StatusForbidden, "You can only edit your own items")
		return
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&it.Title, req.Title)
	set(&it.Description, req.Description)
	set(&it.Category, req.Category)
	set(&it.Location, req.Location)
	set(&it.Type, req.Type)
	set(&it.ExchangeFor, req.ExchangeFor)
	if it.Type != string(model.TypeExchange) {
		it.ExchangeFor = ""
	}
	jsonResponse(w, http.StatusOK, s.itemJSON(it))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if it == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if it.OwnerID != u.ID {
		jsonError(w, http.StatusForbidden, "You can only delete your own items")
		return
	}
	delete(s.items, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) claimItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if s.BeforeClaim != nil {
		s.BeforeClaim(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	switch {
	case it == nil:
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	case it.OwnerID == u.ID:
		jsonError(w, http.StatusBadRequest, "You cannot claim your own item")
		return
	case it.Status != string(model.StatusAvailable):
		s.conflict(w, it)
		return
	}

	it.Status = string(model.StatusClaimed)
	it.ClaimerID = u.ID
	s.notify(it.OwnerID, fmt.Sprintf("%s claimed your item %q", u.Name, it.Title))
	s.mutated(w, it, "Item claimed")
}

func (s *Server) unclaimItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if it == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if it.Status != string(model.StatusClaimed) || it.ClaimerID != u.ID {
		jsonError(w, http.StatusForbidden, "Only the claimer can unclaim this item")
		return
	}

	it.Status = string(model.StatusAvailable)
	it.ClaimerID = 0
	s.notify(it.OwnerID, fmt.Sprintf("%s released your item %q", u.Name, it.Title))
	s.mutated(w, it, "Item unclaimed")
}

// conflict answers a claim on an item that is no longer available.
// The caller holds s.mu.
func (s *Server) conflict(w http.ResponseWriter, it *Item) {
	switch s.Conflict {
	case ConflictBare:
		jsonResponse(w, http.StatusConflict, s.itemJSON(it))
	case ConflictMessageOnly:
		jsonError(w, http.StatusConflict, "Item already claimed")
	default:
		jsonResponse(w, http.StatusConflict, map[string]any{
			"message": "Item already claimed",
			"item":    s.itemJSON(it),
		})
	}
}

// mutated answers a successful claim or unclaim. The caller holds s.mu.
func (s *Server) mutated(w http.ResponseWriter, it *Item, msg string) {
	if s.EmptyReplies {
		jsonResponse(w, http.StatusOK, map[string]string{"message": msg})
		return
	}
	jsonResponse(w, http.StatusOK, s.itemJSON(it))
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats model.DashboardStats
	for _, it := range s.items {
		if it.OwnerID == u.ID {
			stats.TotalPostedItems++
			if it.Status == string(model.StatusAvailable) {
				stats.AvailableItems++
			} else {
				stats.ClaimedItemsCount++
			}
		}
		if it.ClaimerID == u.ID {
			stats.TotalClaimedItems++
		}
	}
	jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) postedItems(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool { return it.OwnerID == u.ID }))
}

func (s *Server) claimedItems(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.list(func(it *Item) bool { return it.ClaimerID == u.ID }))
}
