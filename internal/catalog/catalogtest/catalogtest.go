// Package catalogtest provides a small, deliberately inconsistent fixture
// set for tests of packages built on the catalog.
package catalogtest

import (
	"testing/fstest"

	"go.uber.org/zap"

	"vertice/internal/catalog"
	"vertice/internal/fixtures"
)

const (
	Obras = `[
  {"id": 1, "titulo": "Horizonte Rojo", "precio": 1200, "anio": 2021, "categoria_id": "moderno", "artista_id": 1, "tecnica": "Óleo sobre lienzo", "stats": {"likes": 40}},
  {"id": 2, "titulo": "Silencio Azul", "precio": "850.50", "ano": 2019, "categoria": "moderno", "artista_id": 2, "tecnica": "Acrílico", "stats": {"likes": 95}},
  {"id": 3, "titulo": "Raíces", "precio": 3000, "fecha_publicacion": "2015-06-01", "estilo": "Clásico", "artista_id": "1", "tecnica": "Temple"},
  {"id": 4, "titulo": "Obra Huérfana", "precio": 400, "anio": 2023, "categoria_id": "moderno", "artista_id": 99, "artista_nombre": "Autor Desconocido"},
  {"titulo": "sin id"}
]`
	Artistas = `[
  {"id": 1, "nombre": "José Pérez", "disciplina": "Pintura", "colecciones_ids": [10, 12]},
  {"id": "2", "nombre": "Ana María Ruiz", "disciplina": "Pintura", "colecciones_ids": []}
]`
	Categorias = `[
  {"id": "moderno", "slug": "moderno", "nombre": "Moderno", "tags_populares": ["color"]},
  {"id": "clasico", "nombre": "Clásico"},
  {"slug": "abstracto", "nombre": "Abstracto"}
]`
	Comentarios = `[
  {"obra_id": 1, "handle": "@ana", "texto": "Precioso"},
  {"obra_id": "1", "handle": "@luis", "texto": "Me encanta"},
  {"obra_id": 2, "handle": "@ana", "texto": "Qué azul"}
]`
	Colecciones = `[
  {"id": 10, "titulo": "Primeras obras", "obras_ids": [1, 3]},
  {"id": 11, "titulo": "Ajena", "obras_ids": [2]},
  {"id": 12, "titulo": "Retratos", "obras_ids": []}
]`
	Usuarios = `[
  {"id": "u1", "nombre": "Ana Demo", "email": "ana@vertice.art", "password": "secreta", "rol": "coleccionista", "favoritos": [1], "siguiendo_ids": ["2"]},
  {"id": "u2", "nombre": "Luis Artista", "email": "Luis@Vertice.art", "password": "pinceles", "rol": "Artista", "obras_favoritas": [2, 2, 3]}
]`
	Eventos        = `[{"id": 1, "titulo": "Vernissage", "fecha": "2026-11-02"}]`
	Noticias       = `[{"id": 1, "titulo": "Nueva sala", "fecha": "2026-10-01"}]`
	Notificaciones = `[{"id": 1, "tipo": "like", "mensaje": "A Ana le gusta tu obra", "leida": false}]`
)

// FS returns the fixture files keyed the way a data directory lays them out.
func FS() fstest.MapFS {
	return fstest.MapFS{
		"obras.json":          {Data: []byte(Obras)},
		"artistas.json":       {Data: []byte(Artistas)},
		"categorias.json":     {Data: []byte(Categorias)},
		"comentarios.json":    {Data: []byte(Comentarios)},
		"colecciones.json":    {Data: []byte(Colecciones)},
		"usuarios.json":       {Data: []byte(Usuarios)},
		"eventos.json":        {Data: []byte(Eventos)},
		"noticias.json":       {Data: []byte(Noticias)},
		"notificaciones.json": {Data: []byte(Notificaciones)},
	}
}

// NewStore builds a catalog store over FS.
func NewStore(log *zap.Logger) *catalog.Store {
	return catalog.NewStore(fixtures.NewFSSource(FS()), log)
}
