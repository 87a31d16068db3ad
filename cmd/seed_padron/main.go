// seed_padron genera un script SQL para poblar la tabla clientes a partir de
// una exportación CSV del padrón (separador ';', codificación ISO-8859-1, la
// habitual en los sistemas de gestión legados).
//
// Columnas esperadas: nombre;condicion_iva;tipo_doc;nro_doc;razon_social;email;telefono
//
// Uso: go run ./cmd/seed_padron [ruta/padron.csv]
// Por defecto busca padron.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/010_seed_clientes.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type fila struct {
	nombre       string
	condicionIVA string
	tipoDoc      string
	nroDoc       string
	razonSocial  string
	email        string
	telefono     string
}

func main() {
	csvPath := "padron.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Los padrones exportados vienen en ISO-8859-1 (ñ, tildes)
	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = 7

	records, err := r.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var filas []fila
	for i, rec := range records {
		// Cabecera opcional
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "nombre") {
			continue
		}
		fl := fila{
			nombre:       strings.TrimSpace(rec[0]),
			condicionIVA: strings.ToUpper(strings.TrimSpace(rec[1])),
			tipoDoc:      strings.ToUpper(strings.TrimSpace(rec[2])),
			nroDoc:       soloDigitos(rec[3]),
			razonSocial:  strings.TrimSpace(rec[4]),
			email:        strings.TrimSpace(rec[5]),
			telefono:     strings.TrimSpace(rec[6]),
		}
		if fl.nombre == "" || fl.condicionIVA == "" {
			continue
		}
		filas = append(filas, fl)
	}

	moduleRoot := findModuleRoot()
	outDir := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	outPath := filepath.Join(outDir, "010_seed_clientes.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Clientes importados del padrón\n")
	out.WriteString("-- Generado desde " + filepath.Base(csvPath) + " (cmd/seed_padron)\n\n")

	for _, fl := range filas {
		fmt.Fprintf(out,
			"INSERT INTO clientes (id, nombre, condicion_iva, tipo_doc, nro_doc, razon_social, email, telefono, created_at, updated_at)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', %s, %s, %s, %s, now(), now())\n",
			uuid.NewString(), escapeSQL(fl.nombre), escapeSQL(fl.condicionIVA), escapeSQL(fl.tipoDoc),
			sqlNullable(fl.nroDoc), sqlNullable(fl.razonSocial), sqlNullable(fl.email), sqlNullable(fl.telefono))
		out.WriteString("ON CONFLICT (nro_doc) DO UPDATE SET nombre = EXCLUDED.nombre, razon_social = EXCLUDED.razon_social;\n")
	}

	fmt.Printf("Generado %s: %d clientes\n", outPath, len(filas))
}

func soloDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func sqlNullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
