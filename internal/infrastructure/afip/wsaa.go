package afip

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/beevik/etree"
)

// ServicioWSFE identificador de servicio para el TRA de WSAA.
const ServicioWSFE = "wsfe"

// TicketAcceso credenciales vigentes emitidas por WSAA para firmar las
// llamadas al WSFE (header Auth: Token + Sign + Cuit).
type TicketAcceso struct {
	Token  string
	Sign   string
	Expira time.Time
}

// Vigente indica si el ticket sigue siendo usable (margen de 2 minutos para
// no enviar con un ticket a punto de vencer).
func (t *TicketAcceso) Vigente(now time.Time) bool {
	return t != nil && now.Add(2*time.Minute).Before(t.Expira)
}

// TicketSource define de dónde salen las credenciales WSAA. La firma CMS del
// TRA se hace fuera de este servicio (certificado fiscal en poder del área
// contable); acá solo se consume el loginTicketResponse resultante.
type TicketSource interface {
	Ticket(ctx context.Context) (*TicketAcceso, error)
}

// BuildTRA genera el XML del loginTicketRequest (TRA) a firmar en CMS y
// presentar ante WSAA. uniqueID debe ser creciente entre pedidos.
func BuildTRA(service string, uniqueID int64, now time.Time, ttl time.Duration) ([]byte, error) {
	if service == "" {
		return nil, fmt.Errorf("wsaa: service es obligatorio (ej: %q)", ServicioWSFE)
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(fmt.Sprintf("%d", uniqueID))
	header.CreateElement("generationTime").SetText(now.Add(-10 * time.Minute).Format(time.RFC3339))
	header.CreateElement("expirationTime").SetText(now.Add(ttl).Format(time.RFC3339))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// ParseTA interpreta el loginTicketResponse (TA) devuelto por WSAA y extrae
// token, sign y vencimiento.
func ParseTA(raw []byte) (*TicketAcceso, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("wsaa: TA ilegible: %w", err)
	}
	token := doc.FindElement("//credentials/token")
	sign := doc.FindElement("//credentials/sign")
	exp := doc.FindElement("//header/expirationTime")
	if token == nil || sign == nil || exp == nil {
		return nil, fmt.Errorf("wsaa: TA sin credentials/token, credentials/sign o header/expirationTime")
	}
	expira, err := time.Parse(time.RFC3339, exp.Text())
	if err != nil {
		return nil, fmt.Errorf("wsaa: expirationTime inválido %q: %w", exp.Text(), err)
	}
	return &TicketAcceso{
		Token:  token.Text(),
		Sign:   sign.Text(),
		Expira: expira,
	}, nil
}

// FileTicketSource lee el TA desde un archivo renovado fuera de banda (cron
// del área contable) y lo cachea hasta su vencimiento.
type FileTicketSource struct {
	path string

	mu     sync.Mutex
	cached *TicketAcceso
}

// NewFileTicketSource construye la fuente sobre la ruta del TA.
func NewFileTicketSource(path string) *FileTicketSource {
	return &FileTicketSource{path: path}
}

// Ticket devuelve el ticket cacheado si sigue vigente; si no, relee el
// archivo. Si el archivo también está vencido el error lo dice explícito:
// reintentarlo sin TA nuevo no sirve.
func (s *FileTicketSource) Ticket(ctx context.Context) (*TicketAcceso, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.cached.Vigente(now) {
		return s.cached, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("wsaa: leer TA %s: %w", s.path, err)
	}
	ta, err := ParseTA(raw)
	if err != nil {
		return nil, err
	}
	if !ta.Vigente(now) {
		return nil, fmt.Errorf("wsaa: el TA de %s venció el %s; renovarlo antes de enviar", s.path, ta.Expira.Format(time.RFC3339))
	}
	s.cached = ta
	return ta, nil
}
