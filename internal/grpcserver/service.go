package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"vertice/pkg/models"
)

const ServiceName = "vertice.catalog.v1.CatalogService"

type GetArtworkRequest struct {
	ID int `json:"id"`
}

type GetArtistRequest struct {
	ID int `json:"id"`
}

type GetCategoryRequest struct {
	Slug string `json:"slug"`
}

type ListArtworksRequest struct {
	Q        string `json:"q,omitempty"`
	Category string `json:"categoria,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

type ListArtworksResponse struct {
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Items  []models.ArtworkCard `json:"items"`
}

// CatalogServer is the service contract; messages are JSON encoded.
type CatalogServer interface {
	GetArtwork(ctx context.Context, req *GetArtworkRequest) (*models.ArtworkDetail, error)
	GetArtist(ctx context.Context, req *GetArtistRequest) (*models.ArtistDetail, error)
	GetCategory(ctx context.Context, req *GetCategoryRequest) (*models.CategoryView, error)
	ListArtworks(ctx context.Context, req *ListArtworksRequest) (*ListArtworksResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetArtwork",
			Handler: unary("GetArtwork", func(s CatalogServer, ctx context.Context, req *GetArtworkRequest) (any, error) {
				return s.GetArtwork(ctx, req)
			}),
		},
		{
			MethodName: "GetArtist",
			Handler: unary("GetArtist", func(s CatalogServer, ctx context.Context, req *GetArtistRequest) (any, error) {
				return s.GetArtist(ctx, req)
			}),
		},
		{
			MethodName: "GetCategory",
			Handler: unary("GetCategory", func(s CatalogServer, ctx context.Context, req *GetCategoryRequest) (any, error) {
				return s.GetCategory(ctx, req)
			}),
		},
		{
			MethodName: "ListArtworks",
			Handler: unary("ListArtworks", func(s CatalogServer, ctx context.Context, req *ListArtworksRequest) (any, error) {
				return s.ListArtworks(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vertice/catalog/v1",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req any](method string, call func(CatalogServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(CatalogServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}
