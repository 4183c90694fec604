// Package dynamo provides a catalog.Source backed by a DynamoDB table.
//
// Table schema:
//   - Partition key: id (string)
//   - title, artist (string)
//   - features (map of attribute name to number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name simili-tracks \
//	  --attribute-definitions AttributeName=id,AttributeType=S \
//	  --key-schema AttributeName=id,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"golang.org/x/time/rate"
)

// Client is the subset of the DynamoDB API used by Store.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ErrInvalidItem is returned for items that do not follow the table schema.
var ErrInvalidItem = errors.New("invalid catalog item")

// Options configures a Store.
type Options struct {
	// PageSize is the Scan page size. 0 lets DynamoDB decide.
	PageSize int32

	// ScanRate limits Scan pages per second. 0 means unlimited.
	ScanRate float64

	// ConsistentRead enables strongly consistent reads.
	ConsistentRead bool
}

// Store is a DynamoDB catalog.
type Store struct {
	client  Client
	table   string
	opts    Options
	limiter *rate.Limiter
}

var _ catalog.Source = (*Store)(nil)

// NewStore creates a Store over client and table.
func NewStore(client Client, table string, optFns ...func(*Options)) *Store {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.ScanRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.ScanRate), 1)
	}

	return &Store{
		client:  client,
		table:   table,
		opts:    o,
		limiter: limiter,
	}
}

// New creates a Store using the default AWS configuration.
// endpoint overrides the service endpoint (DynamoDB Local) when non-empty.
func New(ctx context.Context, table, region, endpoint string, optFns ...func(*Options)) (*Store, error) {
	var cfgOpts []func(*config.LoadOptions) error
	if region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return NewStore(client, table, optFns...), nil
}

// Get returns the track with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Track, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(s.opts.ConsistentRead),
	})
	if err != nil {
		return model.Track{}, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	if len(resp.Item) == 0 {
		return model.Track{}, catalog.ErrNotFound
	}
	return decodeItem(resp.Item)
}

// List scans the whole table and returns the tracks ordered by id.
func (s *Store) List(ctx context.Context) ([]model.Track, error) {
	input := &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(s.opts.ConsistentRead),
	}
	if s.opts.PageSize > 0 {
		input.Limit = aws.Int32(s.opts.PageSize)
	}

	tracks := []model.Track{}
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}

		for _, item := range resp.Items {
			t, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, t)
		}

		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}

	slices.SortFunc(tracks, func(a, b model.Track) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tracks, nil
}

// Put writes tracks, replacing existing items.
func (s *Store) Put(ctx context.Context, tracks ...model.Track) error {
	for _, t := range tracks {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.table),
			Item:      encodeItem(t),
		})
		if err != nil {
			return fmt.Errorf("failed to put track %s: %w", t.ID, err)
		}
	}
	return nil
}

func encodeItem(t model.Track) map[string]types.AttributeValue {
	feats := make(map[string]types.AttributeValue, len(t.Features))
	for name, v := range t.Features {
		feats[name] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return map[string]types.AttributeValue{
		"id":       &types.AttributeValueMemberS{Value: t.ID},
		"title":    &types.AttributeValueMemberS{Value: t.Title},
		"artist":   &types.AttributeValueMemberS{Value: t.Artist},
		"features": &types.AttributeValueMemberM{Value: feats},
	}
}

func decodeItem(item map[string]types.AttributeValue) (model.Track, error) {
	id, ok := item["id"].(*types.AttributeValueMemberS)
	if !ok {
		return model.Track{}, fmt.Errorf("%w: missing id", ErrInvalidItem)
	}

	t := model.Track{
		ID:     id.Value,
		Title:  stringAttr(item, "title"),
		Artist: stringAttr(item, "artist"),
	}

	av, ok := item["features"]
	if !ok {
		return t, nil
	}
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return model.Track{}, fmt.Errorf("%w: track %s: features is not a map", ErrInvalidItem, t.ID)
	}

	t.Features = make(features.Record, len(m.Value))
	for name, v := range m.Value {
		n, ok := v.(*types.AttributeValueMemberN)
		if !ok {
			return model.Track{}, fmt.Errorf("%w: track %s: feature %s is not a number", ErrInvalidItem, t.ID, name)
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return model.Track{}, fmt.Errorf("%w: track %s: feature %s: %w", ErrInvalidItem, t.ID, name, err)
		}
		t.Features[name] = f
	}
	return t, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
