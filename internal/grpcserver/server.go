package grpcserver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vertice/internal/catalog"
	"vertice/pkg/models"
)

type Server struct {
	Catalog *catalog.Store
}

func NewServer(cat *catalog.Store) *Server {
	return &Server{Catalog: cat}
}

func (s *Server) GetArtwork(ctx context.Context, req *GetArtworkRequest) (*models.ArtworkDetail, error) {
	if req == nil || req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	d := s.Catalog.ArtworkDetail(ctx, req.ID)
	if d == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return d, nil
}

func (s *Server) GetArtist(ctx context.Context, req *GetArtistRequest) (*models.ArtistDetail, error) {
	if req == nil || req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	d := s.Catalog.ArtistDetail(ctx, req.ID)
	if d == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return d, nil
}

func (s *Server) GetCategory(ctx context.Context, req *GetCategoryRequest) (*models.CategoryView, error) {
	if req == nil || strings.TrimSpace(req.Slug) == "" {
		return nil, status.Error(codes.InvalidArgument, "slug required")
	}
	v := s.Catalog.CategoryView(ctx, req.Slug)
	if v.Category == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &v, nil
}

func (s *Server) ListArtworks(ctx context.Context, req *ListArtworksRequest) (*ListArtworksResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	q := catalog.ListQuery{
		Q:        strings.TrimSpace(req.Q),
		Category: strings.TrimSpace(req.Category),
		Sort:     catalog.ParseSortKey(req.Sort),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	items, total := s.Catalog.List(ctx, q)
	limit, offset := catalog.PageBounds(q.Limit, q.Offset)
	return &ListArtworksResponse{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Items:  items,
	}, nil
}

// UnaryLogger logs one line per call.
func UnaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(start)),
		)
		return resp, err
	}
}
