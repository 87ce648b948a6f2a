package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"vertice/pkg/models"
)

// Client calls CatalogService over any connection, using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName))
}

func (c *Client) GetArtwork(ctx context.Context, id int) (*models.ArtworkDetail, error) {
	out := new(models.ArtworkDetail)
	if err := c.invoke(ctx, "GetArtwork", &GetArtworkRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetArtist(ctx context.Context, id int) (*models.ArtistDetail, error) {
	out := new(models.ArtistDetail)
	if err := c.invoke(ctx, "GetArtist", &GetArtistRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, slug string) (*models.CategoryView, error) {
	out := new(models.CategoryView)
	if err := c.invoke(ctx, "GetCategory", &GetCategoryRequest{Slug: slug}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListArtworks(ctx context.Context, req ListArtworksRequest) (*ListArtworksResponse, error) {
	out := new(ListArtworksResponse)
	if err := c.invoke(ctx, "ListArtworks", &req, out); err != nil {
		return nil, err
	}
	return out, nil
}
