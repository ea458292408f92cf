package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/provider"
)

// mockDynamo stores items per table: table -> pkValue -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{
			"orders":       {},
			"transactions": {},
		},
	}
}

// pkAttr picks the primary key attribute for a table.
func pkAttr(table string) string {
	if table == "orders" {
		return "order_id"
	}
	return "transaction_id"
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	attr := pkAttr(table)
	pkv, ok := params.Item[attr]
	if !ok {
		return nil, errors.New("no primary key in put item")
	}
	pk := pkv.(*types.AttributeValueMemberS).Value
	if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	pk := params.Key[pkAttr(table)].(*types.AttributeValueMemberS).Value
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	pk := params.Key[pkAttr(table)].(*types.AttributeValueMemberS).Value
	item, ok := m.tables[table][pk]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, ":expected") {
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		current := item["status"].(*types.AttributeValueMemberS).Value
		if current != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	want := params.ExpressionAttributeValues[":fp"].(*types.AttributeValueMemberS).Value
	out := &dyn.QueryOutput{}
	for _, item := range m.tables[table] {
		fp, ok := item["footprint"].(*types.AttributeValueMemberS)
		if ok && fp.Value == want {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return &dyn.TransactWriteItemsOutput{}, nil
}

// fakeSQS records every published message body.
type fakeSQS struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.bodies = append(f.bodies, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]string, 0, len(f.bodies))
	for _, b := range f.bodies {
		var m map[string]string
		_ = json.Unmarshal([]byte(b), &m)
		out = append(out, m)
	}
	return out
}

// fakeCloudWatch counts puts per metric name.
type fakeCloudWatch struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeCloudWatch() *fakeCloudWatch {
	return &fakeCloudWatch{counts: map[string]int{}}
}

func (f *fakeCloudWatch) PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range params.MetricData {
		f.counts[*d.MetricName]++
	}
	return &cw.PutMetricDataOutput{}, nil
}

// fakeAdapter scripts the gateway for flow tests.
type fakeAdapter struct {
	name           string
	initiateResult *provider.InitiateResult
	initiateErr    error
	statusResult   *provider.StatusResult
	statusErr      error
	initiateCalls  int
	statusCalls    int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) InitiatePayment(ctx context.Context, req provider.InitiateRequest, orderID string) (*provider.InitiateResult, error) {
	f.initiateCalls++
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return f.initiateResult, nil
}

func (f *fakeAdapter) CheckStatus(ctx context.Context, footprint, method string) (*provider.StatusResult, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResult, nil
}

func (f *fakeAdapter) RequiresPolling(method string) bool {
	return !provider.IsCardMethod(method)
}

func (f *fakeAdapter) NormalizeStatus(code string) provider.Outcome {
	switch code {
	case "T":
		return provider.OutcomeSucceeded
	case "E":
		return provider.OutcomePending
	default:
		return provider.OutcomeFailed
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
