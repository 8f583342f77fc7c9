// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir. errors.New() ile sabit error
// değişkenleri tanımlarız; karşılaştırma string yerine errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

// Domain-level error'lar.
// Service katmanı bunları (gerekirse %w ile sararak) döner,
// handler katmanı HTTP status code'larına map'ler (bkz. response.go).
//
// ErrStorage ve ErrUpload mesaj gönderim akışına özeldir:
// ikisi de gönderimi iptal eder ve gönderene raporlanır.
// Push (WS teslim) hataları buraya DAHİL DEĞİLDİR — mesaj bir kez
// kalıcı yazıldıktan sonra teslim hatası sadece loglanır.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrStorage         = errors.New("storage error")
	ErrUpload          = errors.New("upload error")
	ErrInternal        = errors.New("internal error")
)
