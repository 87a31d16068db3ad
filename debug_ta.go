package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lvidela/facturador-api/internal/infrastructure/afip"
)

func main() {
	// Ruta del ticket de acceso WSAA. Pasar como argumento o usar la default.
	taPath := "ta.xml"
	if len(os.Args) > 1 {
		taPath = os.Args[1]
	}

	fmt.Println("🔍 DIAGNÓSTICO DE TICKET DE ACCESO WSAA")
	fmt.Println("---------------------------------------")
	fmt.Printf("📂 Intentando leer: %s\n", taPath)

	data, err := os.ReadFile(taPath)
	if err != nil {
		fmt.Println("\n❌ ERROR DE ARCHIVO:")
		fmt.Printf("   Go no puede encontrar o abrir el archivo.\n")
		fmt.Printf("   Detalle técnico: %v\n", err)
		return
	}
	fmt.Printf("✅ Archivo encontrado. Tamaño: %d bytes\n", len(data))

	ta, err := afip.ParseTA(data)
	if err != nil {
		fmt.Println("\n❌ ERROR DE FORMATO:")
		fmt.Printf("   El XML no es un loginTicketResponse válido.\n")
		fmt.Printf("   Detalle técnico: %v\n", err)
		return
	}
	fmt.Printf("✅ XML válido. Token de %d caracteres\n", len(ta.Token))
	fmt.Printf("📅 Expira: %s\n", ta.Expira.Format(time.RFC3339))

	if !ta.Vigente(time.Now()) {
		fmt.Println("\n❌ TICKET VENCIDO (o a menos de 2 minutos de vencer)")
		fmt.Println("   Firmar un nuevo TRA contra WSAA y reemplazar el archivo.")
		return
	}
	fmt.Printf("\n✅ Ticket vigente. Quedan %s\n", time.Until(ta.Expira).Round(time.Second))
}
