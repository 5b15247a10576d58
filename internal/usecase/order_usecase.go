package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, log: log}
}

type OrderLineOutput struct {
	ProductID   int64           `json:"productId"`
	Quantity    int64           `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"priceAtTime"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"userId"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	Lines       []OrderLineOutput `json:"lines"`
}

type OrderListOutput struct {
	Orders     []OrderOutput `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type ListMyOrdersInput struct {
	Page   int
	Limit  int
	Status string
}

// PlaceOrder はカートを注文に確定する。
// 全ステップを1トランザクションで行い、失敗したら何も残さない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート明細取得
		lines, err := r.CartLines().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		//先に在庫を全明細チェックして、商品単位のエラーを返せるようにする。
		//本当の守りは後の条件付き減算。
		for _, cl := range lines {
			p, err := r.Products().FindByID(ctx, cl.ProductID)
			if err == repo.ErrNotFound {
				return &ProductNotFoundError{ProductID: cl.ProductID}
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Stock < cl.Quantity {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   cl.Quantity,
				}
			}
		}

		//合計はカートの固定価格から計算。
		//明細ごとに丸めず、合計してから2桁に丸める。
		total := decimal.Zero
		orderLines := make([]model.OrderLine, 0, len(lines))
		now := time.Now()

		for _, cl := range lines {
			total = total.Add(cl.PriceAtTime.Mul(decimal.NewFromInt(cl.Quantity)))
			orderLines = append(orderLines, model.OrderLine{
				ProductID:   cl.ProductID,
				Quantity:    cl.Quantity,
				PriceAtTime: cl.PriceAtTime,
				CreatedAt:   now,
			})
		}
		total = total.Round(2)

		//注文作成
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      model.OrderStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderLines().CreateBulk(ctx, orderID, orderLines); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫減算（足りないなら false）。
		//事前チェック後に他の注文が在庫を取った場合はここで止まり、全体がロールバックされる。
		for _, cl := range lines {
			ok, err := r.Inventory().DecrementStockIfEnough(ctx, cl.ProductID, cl.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				p, perr := r.Products().FindByID(ctx, cl.ProductID)
				if perr == repo.ErrNotFound {
					return &ProductNotFoundError{ProductID: cl.ProductID}
				}
				if perr != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   cl.Quantity,
				}
			}
		}

		//カートをクリア
		if err := r.CartLines().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(model.Order{
			ID:          orderID,
			UserID:      userID,
			TotalAmount: total,
			Status:      model.OrderStatusPending,
			CreatedAt:   now,
		}, orderLines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	u.log.Info("order placed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", out.ID),
		zap.String("total_amount", out.TotalAmount.String()),
		zap.Int("lines", len(out.Lines)),
	)

	return out, nil
}

// 自分の注文一覧（新しい順、ページング付き）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, in ListMyOrdersInput) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Status != "" && !model.ValidOrderStatus(in.Status) {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, repo.OrderListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: in.Status,
			UserID: &userID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, lines))
		}

		out = OrderListOutput{
			Orders:     outs,
			Pagination: newPagination(in.Page, in.Limit, total),
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 注文詳細（他人の注文は「存在しない扱い」にする）
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, OrderLineOutput{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			PriceAtTime: l.PriceAtTime,
		})
	}

	return OrderOutput{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		Lines:       outLines,
	}
}
