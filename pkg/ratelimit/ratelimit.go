// Package ratelimit — sliding window tabanlı, anahtar bazlı rate limiting.
//
// İki yerde kullanılır:
//   - Login: IP bazlı, brute-force saldırılarına karşı.
//   - Mesaj gönderimi: userID bazlı, flood'a karşı.
//
// Tasarım:
// - Her anahtar (IP veya userID) için sliding window ile istek sayısı takip edilir.
// - Window süresi içinde maxAttempts aşılırsa istek reddedilir.
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir (memory leak engeli).
//
// Neden in-memory?
// - SQLite'a her request'te yazma gereksiz I/O + contention yaratır.
// - Tek instance deploy için Redis bağımlılığı eklemeye gerek yok.
//
// Neden ayrı paket?
// handlers ↔ middleware arasında import cycle oluşmaması için
// rate limiter bağımsız bir leaf paket olarak konumlandırıldı.
package ratelimit

import (
	"sync"
	"time"
)

// bucket, bir anahtar için istek sayacı ve window başlangıç zamanı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, anahtar bazlı sliding window rate limiter.
//
// Kullanım:
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	if !limiter.Allow(key) { return 429 }
//	// başarılı login'de: limiter.Reset(key)
type Limiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
}

// New, yeni bir Limiter oluşturur ve arka plan temizleme goroutine'ini başlatır.
//
// maxAttempts: Pencere başına izin verilen istek sayısı.
// window: Pencere süresi (ör: 2*time.Minute → 2 dakikada maxAttempts istek).
func New(maxAttempts int, window time.Duration) *Limiter {
	rl := &Limiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen anahtarın isteğine izin verilip verilmediğini kontrol eder.
//
// true: İstek kabul edildi (limit aşılmadı).
// false: Rate limit aşıldı → caller 429 dönmeli.
//
// Her çağrı sayacı artırır (istek başarılı olsun veya olmasın).
func (rl *Limiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	// Window süresi dolmuşsa yeni pencere başlat — eski sayaç sıfırlanır
	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, anahtarın sayacını sıfırlar (ör: başarılı login sonrası).
// Temizlenmezse meşru kullanıcı sonraki denemelerde bloke olabilir.
func (rl *Limiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// RetryAfterSeconds, rate limit aşıldığında kalan bekleme süresini saniye
// cinsinden döner. HTTP Retry-After header değeri olarak kullanılır.
func (rl *Limiter) RetryAfterSeconds(key string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[key]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1 // +1 yuvarlama
}

// Stop, temizleme goroutine'ini durdurur (graceful shutdown).
func (rl *Limiter) Stop() {
	close(rl.stopCleanup)
}

// cleanupLoop, arka planda süresi dolmuş bucket'ları temizler.
// Her 60 saniyede bir çalışır, window süresi geçmiş tüm anahtarları siler.
func (rl *Limiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.windowStart) > rl.window {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
