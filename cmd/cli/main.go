package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"

	"reelvault/internal/auth"
	"reelvault/pkg/config"
	"reelvault/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type entryListResponse struct {
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Items  []models.Entry `json:"items"`
}

type tagListResponse struct {
	Items []models.Tag `json:"items"`
}

func main() {
	global := flag.NewFlagSet("reelvault", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "search":
		handleSearch(ctx, client, *baseURL, args[1:])
	case "show":
		handleShow(ctx, client, *baseURL, args[1:])
	case "tag":
		handleTag(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "rate":
		handleRate(ctx, client, *baseURL, *tokenPath, args[1:])
	case "watched":
		handleFlag(ctx, client, *baseURL, *tokenPath, "watched", args[1:])
	case "favorite":
		handleFlag(ctx, client, *baseURL, *tokenPath, "favorite", args[1:])
	case "rm":
		handleRemove(ctx, client, *baseURL, *tokenPath, args[1:])
	case "events":
		handleEvents(*baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "set-password":
		fs := flag.NewFlagSet("auth set-password", flag.ExitOnError)
		password := fs.String("password", "", "new password")
		cfgPath := fs.String("config", "", "config file path (default ~/.reelvault/config.yaml)")
		_ = fs.Parse(args)
		if *password == "" {
			log.Fatal("password is required")
		}

		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		cfg.PasswordHash = hash
		if err := config.Save(*cfgPath, cfg); err != nil {
			log.Fatalf("save config: %v", err)
		}
		color.Green("password set; restart api-server to pick it up")
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *password == "" {
			log.Fatal("password is required")
		}

		payload := map[string]string{"password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		color.Green("logged in")
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		color.Green("logged out")
	default:
		log.Fatal("usage: reelvault auth <set-password|login|logout>")
	}
}

func handleSearch(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "search query (text and tag tokens)")
	category := fs.String("category", "", "all|untagged|watched|unwatched|favorites|tag:<id>")
	limit := fs.Int("limit", 20, "page size")
	offset := fs.Int("offset", 0, "offset")
	asJSON := fs.Bool("json", false, "print raw JSON")
	_ = fs.Parse(args)

	u, err := url.Parse(baseURL + "/entries")
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	qv := u.Query()
	if *query != "" {
		qv.Set("q", *query)
	}
	if *category != "" {
		qv.Set("category", *category)
	}
	qv.Set("limit", strconv.Itoa(*limit))
	qv.Set("offset", strconv.Itoa(*offset))
	u.RawQuery = qv.Encode()

	var resp entryListResponse
	if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
		log.Fatalf("search failed: %v", err)
	}
	if *asJSON {
		printJSON(resp)
		return
	}

	for _, e := range resp.Items {
		printEntryLine(e)
	}
	fmt.Printf("%d of %d entries\n", len(resp.Items), resp.Total)
}

func handleShow(ctx context.Context, client *http.Client, baseURL string, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int64("id", 0, "entry id")
	_ = fs.Parse(args)
	if *id <= 0 {
		log.Fatal("entry id is required")
	}

	var e models.Entry
	if err := doJSON(ctx, client, http.MethodGet, entryURL(baseURL, *id), "", nil, &e); err != nil {
		log.Fatalf("show failed: %v", err)
	}

	color.New(color.Bold).Println(e.DisplayTitle())
	fmt.Printf("  id:       %d\n", e.ID)
	fmt.Printf("  path:     %s\n", e.Path)
	if e.Year > 0 {
		fmt.Printf("  year:     %d\n", e.Year)
	}
	fmt.Printf("  rating:   %s\n", stars(e.Rating))
	fmt.Printf("  size:     %s\n", humanize.Bytes(uint64(e.Size)))
	fmt.Printf("  watched:  %v  favorite: %v\n", e.Watched, e.Favorite)
	if len(e.Tags) > 0 {
		names := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			names[i] = t.Name
		}
		fmt.Printf("  tags:     %s\n", strings.Join(names, ", "))
	}
	if e.Notes != "" {
		fmt.Printf("  notes:    %s\n", e.Notes)
	}
	fmt.Printf("  added:    %s\n", humanize.Time(e.CreatedAt))
}

func handleTag(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("tag list", flag.ExitOnError)
		query := fs.String("q", "", "rank tags against this query")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/tags")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		if *query != "" {
			qv := u.Query()
			qv.Set("q", *query)
			u.RawQuery = qv.Encode()
		}

		var resp tagListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("tag list failed: %v", err)
		}
		for _, t := range resp.Items {
			fmt.Printf("%4d  %s\n", t.ID, t.Name)
		}
	case "create":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("tag create", flag.ExitOnError)
		name := fs.String("name", "", "tag name")
		tagColor := fs.String("color", "", "display color, e.g. #ff8800")
		_ = fs.Parse(args)
		if *name == "" {
			log.Fatal("tag name is required")
		}

		var t models.Tag
		payload := map[string]string{"name": *name, "color": *tagColor}
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/tags", token, payload, &t); err != nil {
			log.Fatalf("tag create failed: %v", err)
		}
		color.Green("created tag %d %s", t.ID, t.Name)
	case "attach", "detach":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("tag "+sub, flag.ExitOnError)
		entryID := fs.Int64("entry", 0, "entry id")
		tagID := fs.Int64("tag", 0, "tag id")
		_ = fs.Parse(args)
		if *entryID <= 0 || *tagID <= 0 {
			log.Fatal("entry and tag ids are required")
		}

		method := http.MethodPost
		if sub == "detach" {
			method = http.MethodDelete
		}
		endpoint := fmt.Sprintf("%s/tags/%d", entryURL(baseURL, *entryID), *tagID)
		var resp map[string]any
		if err := doJSON(ctx, client, method, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("tag %s failed: %v", sub, err)
		}
		color.Green("tag %sed", sub)
	case "rm":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("tag rm", flag.ExitOnError)
		tagID := fs.Int64("tag", 0, "tag id")
		_ = fs.Parse(args)
		if *tagID <= 0 {
			log.Fatal("tag id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, fmt.Sprintf("%s/tags/%d", baseURL, *tagID), token, nil, &resp); err != nil {
			log.Fatalf("tag rm failed: %v", err)
		}
		color.Green("tag deleted")
	default:
		log.Fatal("usage: reelvault tag <list|create|attach|detach|rm>")
	}
}

func handleRate(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	token := mustToken(tokenPath)
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	id := fs.Int64("id", 0, "entry id")
	rating := fs.Int("rating", 0, "rating 0-5")
	_ = fs.Parse(args)
	if *id <= 0 {
		log.Fatal("entry id is required")
	}

	var e models.Entry
	payload := map[string]any{"rating": *rating}
	if err := doJSON(ctx, client, http.MethodPatch, entryURL(baseURL, *id), token, payload, &e); err != nil {
		log.Fatalf("rate failed: %v", err)
	}
	color.Green("rated %s %s", e.DisplayTitle(), stars(e.Rating))
}

// handleFlag flips the watched or favorite flag on an entry.
func handleFlag(ctx context.Context, client *http.Client, baseURL, tokenPath, field string, args []string) {
	token := mustToken(tokenPath)
	fs := flag.NewFlagSet(field, flag.ExitOnError)
	id := fs.Int64("id", 0, "entry id")
	off := fs.Bool("off", false, "clear the flag instead of setting it")
	_ = fs.Parse(args)
	if *id <= 0 {
		log.Fatal("entry id is required")
	}

	var e models.Entry
	payload := map[string]any{field: !*off}
	if err := doJSON(ctx, client, http.MethodPatch, entryURL(baseURL, *id), token, payload, &e); err != nil {
		log.Fatalf("%s failed: %v", field, err)
	}
	color.Green("%s: %s → %v", field, e.DisplayTitle(), !*off)
}

func handleRemove(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	token := mustToken(tokenPath)
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	idList := fs.String("ids", "", "comma-separated entry ids")
	_ = fs.Parse(args)

	ids, err := parseIDs(*idList)
	if err != nil {
		log.Fatalf("rm: %v", err)
	}
	if len(ids) == 0 {
		log.Fatal("at least one id is required")
	}

	if len(ids) == 1 {
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, entryURL(baseURL, ids[0]), token, nil, &resp); err != nil {
			log.Fatalf("rm failed: %v", err)
		}
		color.Green("deleted entry %d", ids[0])
		return
	}

	var resp struct {
		Deleted []int64 `json:"deleted"`
		Failed  []int64 `json:"failed"`
	}
	payload := map[string]any{"ids": ids}
	if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/entries", token, payload, &resp); err != nil {
		log.Fatalf("rm failed: %v", err)
	}
	color.Green("deleted %d entries", len(resp.Deleted))
	if len(resp.Failed) > 0 {
		color.Red("failed ids: %v", resp.Failed)
	}
}

func handleEvents(baseURL, sub string, args []string) {
	switch sub {
	case "subscribe":
		fs := flag.NewFlagSet("events subscribe", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("subscribe failed: %v", err)
		}
	default:
		log.Fatal("usage: reelvault events subscribe")
	}
}

func runWebSocket(endpoint string) error {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	log.Printf("[events] connected to %s", endpoint)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func printEntryLine(e models.Entry) {
	title := e.DisplayTitle()
	if e.Favorite {
		title = color.YellowString(title)
	}
	marks := " "
	if e.Watched {
		marks = color.GreenString("w")
	}
	fmt.Printf("%5d %s %-50s %s %8s\n",
		e.ID, marks, title, stars(e.Rating), humanize.Bytes(uint64(e.Size)))
}

func stars(rating int) string {
	if rating <= 0 {
		return "     "
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("*", rating) + strings.Repeat(" ", 5-rating)
}

func entryURL(baseURL string, id int64) string {
	return fmt.Sprintf("%s/entries/%d", baseURL, id)
}

func parseIDs(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.reelvault-token.json"
	}
	return filepath.Join(home, ".reelvault", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: path}).String(), nil
}

func printUsage() {
	fmt.Println("reelvault <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth set-password|login|logout")
	fmt.Println("  search -q <query> [-category <c>]")
	fmt.Println("  show -id <id>")
	fmt.Println("  tag list|create|attach|detach|rm")
	fmt.Println("  rate -id <id> -rating <0-5>")
	fmt.Println("  watched -id <id> [-off]")
	fmt.Println("  favorite -id <id> [-off]")
	fmt.Println("  rm -ids <id,id,...>")
	fmt.Println("  events subscribe")
}
