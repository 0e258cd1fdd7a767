// Package apitest runs an in-memory stand-in for the remote store API.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"steeze/internal/domain"
)

// Email is one recorded send_email.php call.
type Email struct {
	Trigger string         `json:"trigger"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Data    map[string]any `json:"data"`
}

// Server is a fake API. Fields may be edited directly between requests
// while holding Mu.
type Server struct {
	*httptest.Server

	Mu       sync.Mutex
	Products map[string]map[string]any
	Orders   map[string]map[string]any
	Receipts map[string]map[string]any
	Reviews  map[string]map[string]any
	Users    map[string]map[string]any
	Settings map[string]any
	Emails   []Email
	Uploads  []string // order ids receipts were uploaded for

	// Fail forces the named operation ("orders.create", "receipts.upload",
	// "email", ...) to answer with a failure envelope.
	Fail map[string]string
	// CreateOrderBody overrides the orders.create response when set.
	CreateOrderBody string

	nextID   int
	Password string
}

func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		Products: map[string]map[string]any{},
		Orders:   map[string]map[string]any{},
		Receipts: map[string]map[string]any{},
		Reviews:  map[string]map[string]any{},
		Users:    map[string]map[string]any{},
		Settings: map[string]any{"rateUSD": "1600", "rateGBP": "2000", "active_theme": "classic"},
		Fail:     map[string]string{},
		nextID:   100,
		Password: "Secret123",
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.route))
	t.Cleanup(s.Close)
	return s
}

// AddProduct seeds a product and returns its id.
func (s *Server) AddProduct(name string, price int, extra map[string]any) string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	id := s.id()
	p := map[string]any{"id": id, "name": name, "price": price, "stock": 10, "category": "Tops", "images": []string{"/img/" + id + ".jpg"}}
	for k, v := range extra {
		p[k] = v
	}
	s.Products[id] = p
	return id
}

// AddOrder seeds an order and returns its id.
func (s *Server) AddOrder(o map[string]any) string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	id, _ := o["id"].(string)
	if id == "" {
		id = s.id()
	}
	o["id"] = id
	if _, ok := o["status"]; !ok {
		o["status"] = "Pending"
	}
	s.Orders[id] = o
	return id
}

// AddReceipt seeds a receipt for an order and returns its id.
func (s *Server) AddReceipt(orderID string) string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	id := s.id()
	s.Receipts[id] = map[string]any{"id": id, "order_id": orderID, "file_path": "uploads/" + id + ".png", "verification_status": "Pending", "uploaded_at": "2026-01-01 10:00:00"}
	return id
}

// AddUser seeds a customer account; login uses s.Password.
func (s *Server) AddUser(name, email string) string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	id := s.id()
	s.Users[id] = map[string]any{"id": id, "name": name, "email": email, "phone": "0800"}
	return id
}

// EmailsFor returns recorded emails with the given trigger.
func (s *Server) EmailsFor(trigger domain.Trigger) []Email {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	var out []Email
	for _, e := range s.Emails {
		if e.Trigger == string(trigger) {
			out = append(out, e)
		}
	}
	return out
}

// FailOn makes op answer with a failure envelope carrying msg.
func (s *Server) FailOn(op, msg string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.Fail[op] = msg
}

// RespondToCreate replaces the order-creation response body.
func (s *Server) RespondToCreate(body string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.CreateOrderBody = body
}

// UploadedOrders lists the order ids receipts were uploaded for.
func (s *Server) UploadedOrders() []string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return append([]string(nil), s.Uploads...)
}

func (s *Server) OrderStatus(id string) string {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if o, ok := s.Orders[id]; ok {
		st, _ := o["status"].(string)
		return st
	}
	return ""
}

func (s *Server) id() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, extra map[string]any) {
	out := map[string]any{"success": true}
	for k, v := range extra {
		out[k] = v
	}
	writeJSON(w, out)
}

func fail(w http.ResponseWriter, msg string) {
	writeJSON(w, map[string]any{"success": false, "error": msg})
}

func decode(r *http.Request) map[string]any {
	m := map[string]any{}
	b, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(b, &m)
	return m
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return strings.Trim(string(b), `"`)
	}
}

func values[M ~map[string]map[string]any](m M) []map[string]any {
	out := make([]map[string]any, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch path {
	case "products.php":
		s.products(w, r)
	case "settings.php":
		s.settings(w, r)
	case "orders.php":
		s.orders(w, r)
	case "receipts.php":
		s.receipts(w, r)
	case "reviews.php":
		s.reviews(w, r)
	case "users.php":
		s.users(w, r)
	case "auth.php":
		s.auth(w, r)
	case "send_email.php":
		if msg, bad := s.Fail["email"]; bad {
			fail(w, msg)
			return
		}
		var e Email
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &e)
		s.Emails = append(s.Emails, e)
		ok(w, nil)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			if p, found := s.Products[id]; found {
				writeJSON(w, []map[string]any{p})
				return
			}
			writeJSON(w, []map[string]any{})
			return
		}
		writeJSON(w, values(s.Products))
	case http.MethodPost:
		body := decode(r)
		id := s.id()
		body["id"] = id
		s.Products[id] = body
		ok(w, map[string]any{"id": id})
	case http.MethodPut:
		body := decode(r)
		id := str(body["id"])
		if _, found := s.Products[id]; !found {
			fail(w, "Product not found")
			return
		}
		s.Products[id] = body
		ok(w, nil)
	case http.MethodDelete:
		delete(s.Products, r.URL.Query().Get("id"))
		ok(w, nil)
	}
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Settings)
	case http.MethodPut:
		if msg, bad := s.Fail["settings.save"]; bad {
			fail(w, msg)
			return
		}
		for k, v := range decode(r) {
			s.Settings[k] = v
		}
		ok(w, nil)
	}
}

func (s *Server) orders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.Method {
	case http.MethodGet:
		switch q.Get("action") {
		case "get_order":
			if o, found := s.Orders[q.Get("id")]; found {
				ok(w, map[string]any{"order": o})
				return
			}
			fail(w, "Order not found")
		case "get_user_orders":
			var out []map[string]any
			for _, o := range s.Orders {
				if str(o["user_id"]) == q.Get("user_id") {
					out = append(out, o)
				}
			}
			writeJSON(w, map[string]any{"success": true, "orders": out})
		default:
			writeJSON(w, values(s.Orders))
		}
	case http.MethodPost:
		if msg, bad := s.Fail["orders.create"]; bad {
			fail(w, msg)
			return
		}
		body := decode(r)
		if s.CreateOrderBody != "" {
			_, _ = io.WriteString(w, s.CreateOrderBody)
			return
		}
		id := s.id()
		body["id"] = id
		body["status"] = "Pending"
		body["items"] = body["cart_items"]
		s.Orders[id] = body
		n, _ := strconv.Atoi(id)
		ok(w, map[string]any{"order_id": n})
	case http.MethodPut:
		if msg, bad := s.Fail["orders.update"]; bad {
			fail(w, msg)
			return
		}
		body := decode(r)
		o, found := s.Orders[str(body["id"])]
		if !found {
			fail(w, "Order not found")
			return
		}
		if body["action"] == "update_items" {
			o["items"] = body["items"]
			o["total_cents"] = body["total_cents"]
		} else {
			o["status"] = body["status"]
			o["notify_customer"] = body["notify_customer"]
		}
		ok(w, nil)
	}
}

func (s *Server) receipts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if msg, bad := s.Fail["receipts.list"]; bad {
			fail(w, msg)
			return
		}
		writeJSON(w, values(s.Receipts))
	case http.MethodPost:
		if msg, bad := s.Fail["receipts.upload"]; bad {
			fail(w, msg)
			return
		}
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			fail(w, "bad upload")
			return
		}
		orderID := r.FormValue("order_id")
		f, hdr, err := r.FormFile("receipt_file")
		if err != nil {
			fail(w, "no file")
			return
		}
		_ = f.Close()
		id := s.id()
		s.Receipts[id] = map[string]any{"id": id, "order_id": orderID, "file_path": "uploads/" + hdr.Filename, "verification_status": "Pending"}
		if o, found := s.Orders[orderID]; found {
			o["status"] = "Proof Provided"
		}
		s.Uploads = append(s.Uploads, orderID)
		writeJSON(w, map[string]any{"ok": true})
	case http.MethodPut:
		body := decode(r)
		rec, found := s.Receipts[str(body["id"])]
		if !found {
			fail(w, "Receipt not found")
			return
		}
		rec["verification_status"] = body["verification_status"]
		ok(w, map[string]any{"message": "updated"})
	case http.MethodDelete:
		delete(s.Receipts, r.URL.Query().Get("id"))
		ok(w, nil)
	}
}

func (s *Server) reviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.Method {
	case http.MethodGet:
		if q.Get("action") == "list_all" {
			writeJSON(w, values(s.Reviews))
			return
		}
		var out []map[string]any
		for _, rv := range s.Reviews {
			if str(rv["product_id"]) == q.Get("product_id") {
				out = append(out, rv)
			}
		}
		writeJSON(w, out)
	case http.MethodPost:
		body := decode(r)
		id := s.id()
		body["id"] = id
		s.Reviews[id] = body
		ok(w, map[string]any{"id": id})
	case http.MethodDelete:
		delete(s.Reviews, q.Get("id"))
		ok(w, nil)
	}
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, values(s.Users))
		return
	}
	body := decode(r)
	switch r.URL.Query().Get("action") {
	case "register":
		for _, u := range s.Users {
			if strings.EqualFold(str(u["email"]), str(body["email"])) {
				fail(w, "Email already registered")
				return
			}
		}
		id := s.id()
		s.Users[id] = map[string]any{"id": id, "name": body["name"], "email": body["email"], "phone": body["phone"]}
		ok(w, map[string]any{"user": s.Users[id]})
	case "login":
		for _, u := range s.Users {
			if strings.EqualFold(str(u["email"]), str(body["email"])) && str(body["password"]) == s.Password {
				ok(w, map[string]any{"user": u})
				return
			}
		}
		w.WriteHeader(http.StatusUnauthorized)
		fail(w, "Invalid email or password")
	case "reset":
		ok(w, map[string]any{"message": "sent"})
	default:
		fail(w, "unknown action")
	}
}

func (s *Server) auth(w http.ResponseWriter, r *http.Request) {
	body := decode(r)
	switch r.URL.Query().Get("action") {
	case "login":
		if str(body["email"]) == "admin@steeze.test" && str(body["password"]) == s.Password {
			ok(w, nil)
			return
		}
		fail(w, "Invalid credentials")
	case "update_password":
		if str(body["current_password"]) != s.Password {
			fail(w, "Current password is incorrect")
			return
		}
		s.Password = str(body["new_password"])
		ok(w, nil)
	default:
		fail(w, "unknown action")
	}
}
