package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/content"
	"github.com/pavelanni/approaches/internal/handler"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
	"github.com/pavelanni/approaches/internal/store"
	"github.com/pavelanni/approaches/internal/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "approaches",
		Short: "Interactive psychology lessons with randomized quizzes",
	}

	serve := serveCmd()
	root.AddCommand(serve, quizCmd(), exportCmd(), validateCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `approaches --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP lesson server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "approaches.db", "SQLite database path")
	f.String("lessons", "", "Directory of lesson YAML files (default: built-in lessons)")
	f.Bool("shuffle-options", true, "Randomize option order per attempt")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /psych)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.String("presenter-password", "", "Presenter password for lesson management (or set APPROACHES_PRESENTER_PASSWORD)")
	f.Duration("session-ttl", 2*time.Hour, "Idle time before an unfinished quiz attempt is dropped")
	f.StringP("lang", "l", "en", "Fallback UI language (en, es)")
	addLogFlags(cmd)
	return cmd
}

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a lesson's quiz in the terminal",
		RunE:  runQuiz,
	}
	f := cmd.Flags()
	f.Int64("lesson", 1, "Lesson id")
	f.String("set", string(model.SetUnderstandingCheck), "Question set (do_now, understanding_check, walkthrough)")
	f.String("lessons", "", "Directory of lesson YAML files (default: built-in lessons)")
	f.Bool("shuffle-options", true, "Randomize option order")
	f.Bool("no-color", false, "Disable colors")
	f.StringP("lang", "l", "en", "UI language (en, es)")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the lesson catalog as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "approaches.db", "SQLite database path")
	f.String("title", "Approaches in Psychology", "Catalog title for output")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check lesson files and report every problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("APPROACHES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("approaches")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/approaches")
	v.AddConfigPath("/etc/approaches")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// lessonFS returns the lesson directory, or the built-in lessons when dir is empty.
func lessonFS(dir string) fs.FS {
	if dir == "" {
		return content.Embedded()
	}
	return os.DirFS(dir)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lessons, err := content.Load(lessonFS(v.GetString("lessons")))
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	if err := loadLessons(db, lessons); err != nil {
		return fmt.Errorf("import lessons: %w", err)
	}

	if err := setPresenterPassword(db, v.GetString("presenter-password")); err != nil {
		return fmt.Errorf("presenter password: %w", err)
	}
	if err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.AppConfig{
		ShuffleOptions: v.GetBool("shuffle-options"),
		BasePath:       basePath,
		SecureCookies:  v.GetBool("secure-cookies"),
		SessionTTL:     v.GetDuration("session-ttl"),
	}

	var src assess.Rand
	if !cfg.ShuffleOptions {
		src = assess.InOrder
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := handler.NewRegistry(cfg.SessionTTL, src)
	go reg.Run(ctx)

	h, err := handler.New(db, reg, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware())

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("starting server",
		"addr", srv.Addr,
		"lang", lang,
		"lessons", len(lessons.Lessons()),
		"shuffle_options", cfg.ShuffleOptions,
		"session_ttl", cfg.SessionTTL,
		"base_path", basePath,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// loadLessons imports every lesson file whose content changed since the last
// import. Unchanged files are skipped by hash.
func loadLessons(db *store.Store, lessons *content.Loader) error {
	for _, f := range lessons.Files() {
		hash := sha256sum(f.Data)
		storedHash, err := db.GetImportedFileHash(f.Path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", f.Path, err)
		}
		if storedHash == hash {
			slog.Debug("lesson file unchanged, skipping", "path", f.Path)
			continue
		}

		lesson, _ := lessons.Lesson(f.LessonID)
		if err := db.ImportLesson(lesson); err != nil {
			var taken *store.SlugTakenError
			if errors.As(err, &taken) {
				slog.Warn("skipping lesson file", "path", f.Path, "error", err)
				continue
			}
			return fmt.Errorf("import %s: %w", f.Path, err)
		}
		if err := db.SetImportedFileHash(f.Path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", f.Path, err)
		}
		slog.Info("imported lesson", "path", f.Path, "id", lesson.ID, "slides", len(lesson.Slides))
	}
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// setPresenterPassword stores the bcrypt hash of password, or disables the
// presenter pages when it is empty.
func setPresenterPassword(db *store.Store, password string) error {
	if password == "" {
		slog.Info("no presenter password set, lesson management disabled")
		return db.ClearPresenterPassword()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash presenter password: %w", err)
	}
	return db.SetPresenterPasswordHash(string(hash))
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init("en"); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	lessons, err := content.Load(lessonFS(v.GetString("lessons")))
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	lesson, ok := lessons.Lesson(v.GetInt64("lesson"))
	if !ok {
		return fmt.Errorf("lesson %d not found", v.GetInt64("lesson"))
	}
	name, ok := model.ParseSetName(v.GetString("set"))
	if !ok {
		return fmt.Errorf("unknown question set %q", v.GetString("set"))
	}
	set, ok := lesson.Set(name)
	if !ok {
		return fmt.Errorf("lesson %d has no %s questions", lesson.ID, name)
	}

	var src assess.Rand
	if !v.GetBool("shuffle-options") {
		src = assess.InOrder
	}
	session, err := assess.New(set.Questions, src)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	return tui.Run(session, tui.Options{
		Title:   lesson.Title + " - " + set.Title,
		Theme:   lesson.Theme,
		Lang:    v.GetString("lang"),
		NoColor: v.GetBool("no-color"),
	}, os.Stdin, os.Stdout)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportCatalog(v.GetString("title"))
	if err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)

	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	ok, errs := content.Check(lessonFS(dir))
	for _, err := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d lesson files valid, %d invalid\n", ok, len(errs))
	if len(errs) > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d invalid lesson files", len(errs))
	}
	return nil
}
