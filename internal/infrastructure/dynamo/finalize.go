package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/applicant-intake/internal/config"
	"github.com/applicant-intake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FinalizeTx turns a pending application into durable records in one
// TransactWriteItems call: put applicant (email must be new), put submission,
// delete pending (must still exist). Either all three happen or none do.
type FinalizeTx struct {
	client *dynamodb.Client
	tables config.DynamoTables
}

func NewFinalizeTx(client *dynamodb.Client, tables config.DynamoTables) *FinalizeTx {
	return &FinalizeTx{client: client, tables: tables}
}

func (t *FinalizeTx) Commit(ctx context.Context, a *domain.Applicant, s *domain.Submission, pendingToken string) error {
	applicantItem, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal applicant: %w", err)
	}
	submissionItem, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(t.tables.Applicants),
				Item:                     applicantItem,
				ConditionExpression:      aws.String("attribute_not_exists(#e)"),
				ExpressionAttributeNames: map[string]string{"#e": "email"},
			}},
			{Put: &types.Put{
				TableName:           aws.String(t.tables.Submissions),
				Item:                submissionItem,
				ConditionExpression: aws.String("attribute_not_exists(submission_id)"),
			}},
			{Delete: &types.Delete{
				TableName:                aws.String(t.tables.PendingApplications),
				Key:                      strKey("token", pendingToken),
				ConditionExpression:      aws.String("attribute_exists(#t)"),
				ExpressionAttributeNames: map[string]string{"#t": "token"},
			}},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return cancellationErr(tce.CancellationReasons)
	}
	if err != nil {
		return fmt.Errorf("finalize transaction: %w", err)
	}
	return nil
}
