package dynamo

import (
	"context"
	"fmt"
	"slices"

	"github.com/applicant-intake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PromptRepo provides typed DynamoDB operations for the prompts table.
type PromptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPromptRepo(client *dynamodb.Client, tableName string) *PromptRepo {
	return &PromptRepo{client: client, tableName: tableName}
}

// PutIfAbsent writes p unless a prompt with the same id already exists.
// It reports whether the item was written.
func (r *PromptRepo) PutIfAbsent(ctx context.Context, p *domain.Prompt) (bool, error) {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return false, fmt.Errorf("marshal prompt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(prompt_id)"),
	})
	if conditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PromptRepo) Get(ctx context.Context, promptID string) (*domain.Prompt, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("prompt_id", promptID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("prompt not found: %w", domain.ErrNotFound)
	}
	var p domain.Prompt
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive returns every active prompt ordered by creation time.
func (r *PromptRepo) ListActive(ctx context.Context) ([]domain.Prompt, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#a = :t"),
		ExpressionAttributeNames: map[string]string{"#a": "active"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	var prompts []domain.Prompt
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Prompt
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		prompts = append(prompts, page...)
	}
	slices.SortFunc(prompts, func(a, b domain.Prompt) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return prompts, nil
}
