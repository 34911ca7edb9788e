package agent

import (
	"context"
	"fmt"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/renderer"
	"github.com/finbook/finbook/store"
	"google.golang.org/genai"
)

// newFacilitator creates the expert in charge of the conversation itself.
func newFacilitator(experts ...*Expert) *Expert {
	model := "gemini-2.5-flash"
	if len(experts) > 0 {
		model = experts[0].ModelName
	}
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are at your service and keep context of your previous questions.

			The user manages a personal ledger: cash accounts, counterparties,
			everyday transactions and investment holdings. Before answering,
			check the current state of the book through the Bookkeeper.

			Devise a plan of questions to each expert and come up with the best
			response to the user's request. Confirm with the user before asking
			the Bookkeeper to modify anything.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst creates an expert with web search, for market context and news.
func NewAnalyst(model string) *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is an expert financial analyst, well aware of
		financial products and institutions and of the latest news about
		companies and funds. Ask the Analyst whenever you need recent or
		grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert financial analyst. You can search and find
			anything related to financial institutions, companies, markets and
			funds. Leverage Google Search to ground your assertions, relate the
			latest news to the user's request.
				`}}},
		},
	}
}

// NewBookkeeper creates the expert in charge of the user's book. It is the
// only expert with write access: every tool call loads the book from the
// store, and mutating calls save it back on success.
func NewBookkeeper(s *store.Store, currency, model string) *Expert {
	k := &keeper{store: s, currency: currency}
	lib := []Function{
		k.summaryFunc(),
		k.transactionsFunc(),
		k.holdingsFunc(),
		k.recordFunc(),
		k.tradeFunc(),
		k.markFunc(),
	}

	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. He is in charge of reading and
		editing the user's book: accounts, counterparties, transactions and
		investment holdings. He can record cash movements, execute trades and
		report on balances and positions.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a bookkeeper in charge of the user's personal ledger.
				Use the available tools to read and edit the book. Other
				experts might ask you questions; pardon their approximative
				language and figure out what they meant.

				Accounts, parties and assets are referred to by name. Amounts
				are plain decimal numbers in the book's single currency.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// keeper holds what the bookkeeper functions need to reach the book.
type keeper struct {
	store    *store.Store
	currency string
}

func (k *keeper) load() (*finbook.Book, error) { return k.store.Load(k.currency) }

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID: id, Name: name,
		Response: map[string]any{"error": err.Error()},
	}
}

func success(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID: id, Name: name,
		Response: map[string]any{"output": output},
	}
}

var markdownResponse = &genai.Schema{
	Type:        genai.TypeString,
	Description: "A markdown-formatted report.",
}

func (k *keeper) summaryFunc() Function {
	const name = "Summary"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Summary reports the whole book at a glance: every
			account balance, every counterparty balance and the investment
			totals.`,
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, renderer.SummaryMarkdown(b))
		},
	}
}

func (k *keeper) transactionsFunc() Function {
	const name = "Transactions"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Transactions lists all transactions in the book,
			most recent first.`,
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, renderer.TransactionsMarkdown(b, b.Transactions()))
		},
	}
}

func (k *keeper) holdingsFunc() Function {
	const name = "Holdings"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Holdings lists the investment positions: quantity
			held, average cost, mark price, realized and unrealized P/L.`,
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, renderer.HoldingsMarkdown(b))
		},
	}
}

func (k *keeper) recordFunc() Function {
	const name = "RecordTransaction"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `RecordTransaction records a cash movement in the
			book and saves it. Income and sale increase the account balance,
			expense and purchase decrease it.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"kind": {
						Type:        genai.TypeString,
						Description: "One of: income, expense, sale, purchase.",
					},
					"date": {
						Type:        genai.TypeString,
						Description: "The transaction date, YYYY-MM-DD. Today is the default.",
					},
					"amount": {
						Type:        genai.TypeNumber,
						Description: "The amount, strictly positive. The kind carries the sign.",
					},
					"account": {
						Type:        genai.TypeString,
						Description: "The name of the cash account.",
					},
					"party": {
						Type:        genai.TypeString,
						Description: "The name of the counterparty, optional.",
					},
					"description": {
						Type:        genai.TypeString,
						Description: "A short description, optional.",
					},
				},
				Required: []string{"kind", "amount", "account"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A confirmation of the recorded transaction.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			kind, err := finbook.ParseTxKind(stringArg(args, "kind"))
			if err != nil {
				return failure(id, name, err)
			}
			date, err := dateArg(args)
			if err != nil {
				return failure(id, name, err)
			}
			amount, err := numberArg(args, "amount")
			if err != nil {
				return failure(id, name, err)
			}
			account, ok := b.AccountByName(stringArg(args, "account"))
			if !ok {
				return failure(id, name, fmt.Errorf("no account named %q", stringArg(args, "account")))
			}
			tx := finbook.Transaction{
				Kind:        kind,
				Date:        date,
				Amount:      finbook.M(amount, b.Currency()),
				Account:     account.ID,
				Description: stringArg(args, "description"),
			}
			if partyName := stringArg(args, "party"); partyName != "" {
				party, ok := partyByName(b, partyName)
				if !ok {
					return failure(id, name, fmt.Errorf("no party named %q", partyName))
				}
				tx.Party = party.ID
			}
			recorded, err := b.Record(tx)
			if err != nil {
				return failure(id, name, err)
			}
			if err := k.store.Save(b); err != nil {
				return failure(id, name, err)
			}
			return success(id, name, fmt.Sprintf("recorded %s of %s on %s (id %s)",
				recorded.Kind, recorded.Amount, recorded.Date, recorded.ID))
		},
	}
}

func (k *keeper) tradeFunc() Function {
	const name = "ExecuteTrade"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `ExecuteTrade buys or sells an asset, updates its
			average cost and realized P/L, records the linked cash transaction
			on the settlement account, and saves the book.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"asset": {
						Type:        genai.TypeString,
						Description: "The name of the asset.",
					},
					"kind": {
						Type:        genai.TypeString,
						Description: "One of: buy, sell.",
					},
					"date": {
						Type:        genai.TypeString,
						Description: "The trade date, YYYY-MM-DD. Today is the default.",
					},
					"quantity": {
						Type:        genai.TypeNumber,
						Description: "Units traded, strictly positive.",
					},
					"price": {
						Type:        genai.TypeNumber,
						Description: "Price per unit, strictly positive.",
					},
					"charges": {
						Type:        genai.TypeNumber,
						Description: "Brokerage and fees, optional.",
					},
					"account": {
						Type:        genai.TypeString,
						Description: "The name of the settlement cash account.",
					},
				},
				Required: []string{"asset", "kind", "quantity", "price", "account"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A confirmation with the resulting position.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			kind, err := finbook.ParseTradeKind(stringArg(args, "kind"))
			if err != nil {
				return failure(id, name, err)
			}
			date, err := dateArg(args)
			if err != nil {
				return failure(id, name, err)
			}
			qty, err := numberArg(args, "quantity")
			if err != nil {
				return failure(id, name, err)
			}
			price, err := numberArg(args, "price")
			if err != nil {
				return failure(id, name, err)
			}
			charges, _ := numberArg(args, "charges")
			asset, ok := assetByName(b, stringArg(args, "asset"))
			if !ok {
				return failure(id, name, fmt.Errorf("no asset named %q", stringArg(args, "asset")))
			}
			account, ok := b.AccountByName(stringArg(args, "account"))
			if !ok {
				return failure(id, name, fmt.Errorf("no account named %q", stringArg(args, "account")))
			}
			result, err := b.ExecuteTrade(asset.ID, finbook.Trade{
				Kind:     kind,
				Date:     date,
				Quantity: finbook.Q(qty),
				Price:    finbook.M(price, b.Currency()),
				Charges:  finbook.M(charges, b.Currency()),
			}, account.ID)
			if err != nil {
				return failure(id, name, err)
			}
			if err := k.store.Save(b); err != nil {
				return failure(id, name, err)
			}
			return success(id, name, fmt.Sprintf(
				"done: now holding %s %s at an average cost of %s, realized P/L %s, %s balance %s",
				result.Asset.Quantity, result.Asset.Name, result.Asset.AvgCost,
				result.Asset.RealizedPL.SignedString(), result.Account.Name, result.Account.Balance))
		},
	}
}

func (k *keeper) markFunc() Function {
	const name = "SetMarkPrice"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `SetMarkPrice updates the latest known unit price of
			an asset, used for the unrealized P/L. It never changes balances
			or the trade history.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"asset": {
						Type:        genai.TypeString,
						Description: "The name of the asset.",
					},
					"price": {
						Type:        genai.TypeNumber,
						Description: "The unit price, never negative.",
					},
				},
				Required: []string{"asset", "price"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A confirmation with the new unrealized P/L.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			b, err := k.load()
			if err != nil {
				return failure(id, name, err)
			}
			price, err := numberArg(args, "price")
			if err != nil {
				return failure(id, name, err)
			}
			asset, ok := assetByName(b, stringArg(args, "asset"))
			if !ok {
				return failure(id, name, fmt.Errorf("no asset named %q", stringArg(args, "asset")))
			}
			marked, err := b.SetMarkPrice(asset.ID, finbook.M(price, b.Currency()))
			if err != nil {
				return failure(id, name, err)
			}
			if err := k.store.Save(b); err != nil {
				return failure(id, name, err)
			}
			return success(id, name, fmt.Sprintf("%s marked at %s, unrealized P/L %s",
				marked.Name, marked.MarkPrice, marked.UnrealizedPL().SignedString()))
		},
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func numberArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q is not a number but %T", key, v)
	}
	return f, nil
}

func dateArg(args map[string]any) (finbook.Date, error) {
	s := stringArg(args, "date")
	if s == "" {
		return finbook.Today(), nil
	}
	return finbook.ParseDate(s)
}

func partyByName(b *finbook.Book, name string) (finbook.Party, bool) {
	for _, p := range b.Parties() {
		if p.Name == name {
			return p, true
		}
	}
	return finbook.Party{}, false
}

func assetByName(b *finbook.Book, name string) (finbook.Asset, bool) {
	for _, a := range b.Assets() {
		if a.Name == name {
			return a, true
		}
	}
	return finbook.Asset{}, false
}
