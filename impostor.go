// Impostor Game
//
// One device is passed from player to player. Each round picks a secret word
// from the catalog; every player sees the word and its picture except one,
// the impostor, who only gets a clue. Discussion happens out loud.
//
// Features:
// - Sessions per game ID: /path/:gameid, /path/:gameid/ws and /path/:gameid/qr
// - One controlling device per session; a newer connection takes over and the
//   older one is told it was superseded
// - The page binds Space to a single "advance" command; buttons send the
//   explicit start / reveal / next / reset commands
// - All commands for a session are applied by that session's hub goroutine,
//   one at a time
// - Player count (3-12) can be changed between rounds
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - QR code for opening the session on the device that will be passed around

package main

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	impostorPath = "/impostor"

	gameIDLength   = 8
	gameIDLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxMessageSize = 512
	writeWait      = 10 * time.Second
)

// Messages coming from the client
type ClientMessage struct {
	Type    string `json:"type"`              // "advance", "start", "reveal", "next", "reset", "players"
	Players int    `json:"players,omitempty"` // players
}

// ViewMessage carries everything the page needs to draw the current screen.
type ViewMessage struct {
	Type    string        `json:"type"`    // "view"
	Catalog string        `json:"catalog"` // "loading", "ready", "unavailable"
	View    impostor.View `json:"view"`
}

// SimpleMessage is for notifications ("error", "superseded")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	deviceID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

// Hub is one game session. Only run touches seq and controller.
type Hub struct {
	id      string
	seq     *impostor.Sequencer
	catalog *catalogStore

	controller *Client

	register chan *Client
	unreg    chan *Client
	commands chan command
	done     chan struct{}
	stop     sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

func newHub(gameID string, seq *impostor.Sequencer, catalog *catalogStore) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		seq:        seq,
		catalog:    catalog,
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

// deliver hands v to the hub unless the hub has shut down.
func deliver[T any](h *Hub, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) run(cfg *Config) {
	// Redraw once when a pending catalog load finishes.
	loaded := h.catalog.Loaded()
	select {
	case <-loaded:
		loaded = nil
	default:
	}

	for {
		select {
		case <-loaded:
			loaded = nil
			h.pushView()
		case c := <-h.register:
			h.touch()
			h.handleRegister(cfg, c)

		case c := <-h.unreg:
			h.touch()
			if h.controller == c {
				close(c.send)
				h.controller = nil
			}

		case cmd := <-h.commands:
			h.touch()
			h.handleCommand(cfg, cmd)

		case <-h.done:
			if h.controller != nil {
				close(h.controller.send)
				h.controller = nil
			}
			return
		}
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// close stops the run loop, which disconnects the controlling device.
func (h *Hub) close() {
	h.stop.Do(func() {
		close(h.done)
	})
}

func (h *Hub) handleRegister(cfg *Config, c *Client) {
	if prev := h.controller; prev != nil && prev != c {
		select {
		case prev.send <- SimpleMessage{
			Type:    "superseded",
			Message: "This game was opened on another device.",
		}:
		default:
		}
		close(prev.send)

		logf(cfg, "GAMES: Device %s took over %s", c.deviceID, h.id)
	}

	h.controller = c
	h.pushView()
}

func (h *Hub) handleCommand(cfg *Config, cmd command) {
	// Input from a device that has since been superseded is dropped.
	if cmd.client != h.controller {
		return
	}

	before := h.seq.Phase()

	var err error
	switch cmd.msg.Type {
	case "advance":
		err = h.seq.Advance()
	case "start":
		err = h.seq.StartGame()
	case "reveal":
		h.seq.RevealCard()
	case "next":
		h.seq.NextPlayer()
	case "reset":
		h.seq.ResetGame()
	case "players":
		err = h.seq.SetPlayers(cmd.msg.Players)
	default:
		return
	}

	h.logTransition(cfg, before)
	h.pushView()

	// Sent after the view so the page still shows it once the view is drawn.
	if err != nil {
		h.reportError(cfg, err)
	}
}

// logTransition never logs who the impostor is.
func (h *Hub) logTransition(cfg *Config, before impostor.Phase) {
	after := h.seq.Phase()
	if after == before {
		return
	}

	switch after {
	case impostor.PhaseAwaitingReveal:
		if before == impostor.PhaseNoRound {
			st := h.seq.State()
			logf(cfg, "GAMES: Started round %s with %d players in %s", st.ID, len(st.Players), h.id)
		}
	case impostor.PhaseRoundEnded:
		logf(cfg, "GAMES: Round %s ended in %s", h.seq.State().ID, h.id)
	case impostor.PhaseNoRound:
		logf(cfg, "GAMES: Reset %s", h.id)
	}
}

func (h *Hub) reportError(cfg *Config, err error) {
	var text string

	switch {
	case errors.Is(err, impostor.ErrEmptyCatalog):
		errorf("Unable to start round in %s: %v", h.id, err)
		text = "No playable items are loaded, so the round cannot start."
	case errors.Is(err, impostor.ErrInvalidPlayerCount):
		text = err.Error()
	case errors.Is(err, impostor.ErrRoundInProgress):
		text = "The player count can only be changed before a round starts."
	default:
		errorf("Game %s: %v", h.id, err)
		text = "Unable to start the round. Please try again."
	}

	h.send(SimpleMessage{
		Type:    "error",
		Message: text,
	})
}

func (h *Hub) pushView() {
	h.send(ViewMessage{
		Type:    "view",
		Catalog: h.catalog.Status(),
		View:    h.seq.View(),
	})
}

func (h *Hub) send(msg any) {
	c := h.controller
	if c == nil {
		return
	}

	select {
	case c.send <- msg:
	default:
		close(c.send)
		h.controller = nil
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const deviceCookieName = "impostor_id"

func getOrSetDeviceID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(deviceCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		errorf("rand.Read error: %v", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	catalog     *catalogStore
}

func newGameManager(ctx context.Context, cfg *Config, catalog *catalogStore) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		catalog:     catalog,
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop(ctx, cfg)
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	picker, err := impostor.NewPicker()
	if err != nil {
		return nil, err
	}

	seq := impostor.NewSequencer(impostor.NewSetup(picker), gm.catalog.Items)
	if err := seq.SetPlayers(cfg.players); err != nil {
		return nil, err
	}

	hub := newHub(gameID, seq, gm.catalog)
	gm.hubs[gameID] = hub
	go hub.run(cfg)

	logf(cfg, "GAMES: Opened %s", gameID)

	return hub, nil
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	for {
		buf := make([]byte, gameIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, gameIDLength)
		for i := range out {
			out[i] = gameIDLetters[int(buf[i])%len(gameIDLetters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

func validGameID(id string) bool {
	if len(id) != gameIDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(gameIDLetters, r) {
			return false
		}
	}
	return true
}

// reaperLoop periodically removes hubs that have been idle longer than
// idleTimeout, and closes every hub once ctx is done.
func (gm *GameManager) reaperLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			gm.mu.Lock()
			for id, hub := range gm.hubs {
				delete(gm.hubs, id)
				hub.close()
			}
			gm.mu.Unlock()
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-gm.idleTimeout)

			gm.mu.Lock()
			for id, hub := range gm.hubs {
				if hub.idleSince().Before(cutoff) {
					delete(gm.hubs, id)
					hub.close()
					logf(cfg, "GAMES: Reaped idle game %s", id)
				}
			}
			gm.mu.Unlock()
		}
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.NotFound(w, r)
			return
		}

		deviceID := getOrSetDeviceID(w, r)
		if deviceID == "" {
			http.Error(w, "unable to assign device id", http.StatusInternalServerError)
			return
		}

		hub, err := gm.getHub(cfg, gameID)
		if err != nil {
			errorf("Unable to open game %s: %v", gameID, err)
			http.Error(w, "unable to open game", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: Upgrade error for %s: %v", gameID, err)
			return
		}

		// The server's read/write timeouts must not apply to a long-lived socket.
		_ = conn.NetConn().SetDeadline(time.Time{})
		conn.SetReadLimit(maxMessageSize)

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			deviceID: deviceID,
		}

		if !deliver(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		deliver(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "advance", "start", "reveal", "next", "reset", "players":
			if !deliver(h, h.commands, command{client: c, msg: msg}) {
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

//go:embed impostor/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)
		// Catalog images may live on another host.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:")
		w.Header().Set("Cross-Origin-Embedder-Policy", "unsafe-none")

		_ = getOrSetDeviceID(w, r)

		_, _ = w.Write(indexHTML)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s%s/%s", cfg.prefix, path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerImpostorGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerImpostorGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, catalog *catalogStore) {
	gm := newGameManager(ctx, cfg, catalog)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))
}
