// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı mesaj gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToUser metodunu çağırır (alıcı + gönderen)
// 3. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 4. Frontend event'i alır ve konuşma görünümünü günceller
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op: Event türü — "newMessage", "getOnlineUsers" vb.
// Data: Event'e özgü payload.
// Seq: Her outbound event'e verilen artan sayı. Client eksik event tespit
// etmek için seq'i takip eder: seq 5'ten sonra 7 gelirse 6 kaybolmuştur.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt

	// OpOnlineUsers, çevrimiçi kullanıcı listesinin TAMAMINI taşır.
	// Delta değil snapshot gönderilir — client kaçırdığı geçişleri bir
	// sonraki snapshot'ta zaten telafi eder. Data: []string (userId listesi).
	OpOnlineUsers = "getOnlineUsers"

	// OpNewMessage, yeni bir direct message'ı taşır. Data: models.Message.
	// Hem alıcıya hem gönderenin diğer cihazlarına gönderilir.
	OpNewMessage = "newMessage"
)
