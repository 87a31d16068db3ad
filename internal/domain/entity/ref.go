package entity

// Ref referencia a otra entidad que puede venir como ID suelto o ya resuelta.
// Se resuelve una sola vez en el borde (repositorio/handler); los componentes
// del núcleo siempre reciben el valor resuelto y no consultan por su cuenta.
type Ref[T any] struct {
	id    string
	value *T
}

// RefByID crea una referencia sin resolver (solo el ID).
func RefByID[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

// RefResolved crea una referencia ya resuelta. El ID acompaña al valor para
// que la relación siga siendo de consulta, nunca de propiedad.
func RefResolved[T any](id string, value *T) Ref[T] {
	return Ref[T]{id: id, value: value}
}

// ID devuelve el identificador referenciado (vacío si la Ref es cero).
func (r Ref[T]) ID() string { return r.id }

// Resolved devuelve el valor resuelto y true, o nil y false si la referencia
// todavía es solo un ID.
func (r Ref[T]) Resolved() (*T, bool) {
	if r.value == nil {
		return nil, false
	}
	return r.value, true
}

// IsZero indica si la referencia está vacía (sin ID ni valor).
func (r Ref[T]) IsZero() bool { return r.id == "" && r.value == nil }
