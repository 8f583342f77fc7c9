// Package main, chat backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Repository'leri oluştur
//  4. WebSocket Hub'ı başlat
//  5. Service'leri oluştur (repository'ler + hub ile)
//  6. Handler'ları ve middleware'ı oluştur
//  7. Route'ları bağla
//  8. CORS yapılandır
//  9. HTTP server'ı başlat
// 10. Graceful shutdown
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanır.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/Niladri080/Chat-App/config"
	"github.com/Niladri080/Chat-App/database"
	"github.com/Niladri080/Chat-App/handlers"
	"github.com/Niladri080/Chat-App/middleware"
	"github.com/Niladri080/Chat-App/pkg/crypto"
	"github.com/Niladri080/Chat-App/pkg/email"
	"github.com/Niladri080/Chat-App/pkg/ratelimit"
	"github.com/Niladri080/Chat-App/repository"
	"github.com/Niladri080/Chat-App/services"
	"github.com/Niladri080/Chat-App/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] chat server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// Mesaj metinleri opsiyonel olarak at-rest şifrelenir.
	var messageKey []byte
	if cfg.Database.EncryptionKey != "" {
		messageKey, err = crypto.DeriveKey(cfg.Database.EncryptionKey)
		if err != nil {
			log.Fatalf("[main] invalid MESSAGE_ENCRYPTION_KEY: %v", err)
		}
		log.Println("[main] message encryption at rest enabled")
	}

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	sessionRepo := repository.NewSQLiteSessionRepo(db.Conn)
	resetRepo := repository.NewSQLiteResetTokenRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db, messageKey)

	// ─── 4. WebSocket Hub ───
	// Hub, tüm WS bağlantılarını yöneten merkezi yapıdır ve EventPublisher
	// interface'ini implement eder — service'ler hub'a interface üzerinden erişir.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 5. Service Layer ───
	uploadService, err := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		log.Fatalf("[main] failed to initialize upload service: %v", err)
	}

	// Email opsiyoneldir — API key verilmemişse forgot-password sadece log'lar.
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Server.PublicURL)
		log.Println("[main] email sending enabled")
	} else {
		log.Println("[main] RESEND_API_KEY not set, email sending disabled")
	}

	authService := services.NewAuthService(
		userRepo, sessionRepo, resetRepo, uploadService, emailSender,
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
	)
	messageService := services.NewMessageService(messageRepo, userRepo, uploadService, hub)

	// ─── 6. Handlers + Middleware ───
	// Login: IP başına 5 deneme / 15 dakika. Send: kullanıcı başına 30 mesaj / 10 saniye.
	loginLimiter := ratelimit.New(5, 15*time.Minute)
	defer loginLimiter.Stop()
	sendLimiter := ratelimit.New(30, 10*time.Second)
	defer sendLimiter.Stop()

	authHandler := handlers.NewAuthHandler(authService, loginLimiter)
	messageHandler := handlers.NewMessageHandler(messageService, sendLimiter)
	statusHandler := handlers.NewStatusHandler(hub)
	wsHandler := ws.NewHandler(hub, authService)

	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo)
	defer authMiddleware.Close()
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMiddleware.Require(http.HandlerFunc(handler))
	}

	// ─── 7. Routes ───
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.Handle("GET /api/auth/check", auth(authHandler.Check))
	mux.Handle("PUT /api/auth/update-profile", auth(authHandler.UpdateProfile))

	// Messages — ServeMux pattern'leri kayıt sırasından bağımsız olarak en
	// spesifik eşleşmeyle çözer: /users literal'i her zaman /{id}'den önce gelir.
	mux.Handle("GET /api/messages/users", auth(messageHandler.SidebarUsers))
	mux.Handle("GET /api/messages/{id}", auth(messageHandler.GetConversation))
	mux.Handle("PUT /api/messages/mark/{id}", auth(messageHandler.MarkSeen))
	mux.Handle("POST /api/messages/send/{id}", auth(messageHandler.Send))

	// Status — public health check
	mux.HandleFunc("GET /api/status", statusHandler.Get)

	// Static file serving — yüklenen görsellere erişim.
	// http.FileServer ".." path'lerini zaten reddeder; ek olarak
	// subdirectory içeren path'ler de reddedilir.
	uploadsHandler := http.StripPrefix("/api/uploads/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/") || strings.Contains(r.URL.Path, "\\") {
			http.NotFound(w, r)
			return
		}
		http.FileServer(http.Dir(cfg.Upload.Dir)).ServeHTTP(w, r)
	}))
	mux.Handle("GET /api/uploads/", uploadsHandler)

	// WebSocket — tarayıcılar upgrade sırasında custom header gönderemez,
	// JWT token query parameter olarak gelir: ws://server/ws?token=JWT
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// ─── 8. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := corsHandler.Handler(mux)

	// Süresi dolmuş session ve reset token'ları saatlik temizle.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go cleanupLoop(cleanupCtx, sessionRepo, resetRepo)

	// ─── 9. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 10. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WS bağlantıları kapanır, sonra HTTP server mevcut request'lerin
	// bitmesini bekleyerek durur (5sn timeout).
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}

// cleanupLoop, süresi dolmuş session ve reset token kayıtlarını periyodik siler.
func cleanupLoop(ctx context.Context, sessions repository.SessionRepository, resets repository.ResetTokenRepository) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := sessions.DeleteExpired(ctx); err != nil {
				log.Printf("[cleanup] failed to delete expired sessions: %v", err)
			} else if n > 0 {
				log.Printf("[cleanup] deleted %d expired sessions", n)
			}

			if n, err := resets.DeleteExpired(ctx); err != nil {
				log.Printf("[cleanup] failed to delete expired reset tokens: %v", err)
			} else if n > 0 {
				log.Printf("[cleanup] deleted %d expired reset tokens", n)
			}
		}
	}
}
