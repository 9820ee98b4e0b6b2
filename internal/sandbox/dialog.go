// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sandbox

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/paychat/internal/backend"
	"github.com/jeranaias/paychat/internal/model"
)

// PixCode is the static PIX "copia e cola" payload handed out by the sandbox.
const PixCode = "00020101021226880014br.gov.bcb.pix2566qrcodes-pix.gerencianet.com.br/v2/cobv/22571380-6d75-4400-a463-8d502b8054865204000053039865802BR5925ASSISTENTE VIRTUAL DE PAG6009SAO PAULO62070503***6304E2CA"

// Barcode is the static boleto line handed out by the sandbox.
const Barcode = "34191.79001 01043.510047 91020.150008 9 89110000029990"

// Canned replies.
const (
	replyGreeting = "Olá! Como posso ajudar você hoje? Posso fornecer informações sobre nossos planos ou ajudar com pagamentos."
	replyAskPlan  = "Qual plano você gostaria de contratar? Temos o **Básico** (R$29,99) e o **Premium** (R$59,90)."
	replyCancel   = "Para cancelar um plano ou assinatura, precisamos verificar alguns detalhes. Por favor, confirme seu e-mail e o plano que deseja cancelar."
	replyNoTx     = "Você ainda não realizou nenhuma transação."
	replyFallback = "Desculpe, não entendi. Posso ajudar com informações sobre os planos **Básico** e **Premium** ou com pagamentos via PIX, boleto ou cartão de crédito."
)

// intent is what a user message asks for.
type intent int

const (
	intentUnknown intent = iota
	intentGreeting
	intentPlanInfo
	intentPayment
	intentMethod
	intentCancel
	intentHistory
)

// infoKind narrows a plan information request.
type infoKind int

const (
	infoGeneral infoKind = iota
	infoPrice
	infoBenefits
	infoDescription
	infoMethods
	infoCatalog
)

// utterance is the keyword analysis of one message.
type utterance struct {
	intent intent
	plan   string
	method string
	info   infoKind
}

// keyword tables, matched against accent-free lowercase text.
var (
	greetingWords = []string{"oi", "ola", "bom dia", "boa tarde", "boa noite"}
	paymentWords  = []string{"pagar", "pagamento", "comprar", "adquirir", "contratar", "assinar"}
	historyWords  = []string{"historico", "transacoes", "transacao", "compras"}
	cancelWords   = []string{"cancelar", "cancelamento", "desistir"}
	infoWords     = []string{"plano", "informac", "detalhe", "beneficio", "preco", "valor", "custa", "vantage"}
)

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and strips diacritics.
func fold(s string) string {
	out, _, err := transform.String(foldAccents, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// containsWord reports whether text contains w as a whole word or phrase.
func containsWord(text, w string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], w)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(w)
		before := start == 0 || !isWordByte(text[start-1])
		after := end == len(text) || !isWordByte(text[end])
		if before && after {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func containsAny(text string, words []string, whole bool) bool {
	for _, w := range words {
		if whole && containsWord(text, w) || !whole && strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// analyze extracts intent, plan, method and information kind from text.
func analyze(text string) utterance {
	t := fold(text)
	var u utterance

	switch {
	case strings.Contains(t, "premium"):
		u.plan = "premium"
	case strings.Contains(t, "basico"):
		u.plan = "basico"
	}

	switch {
	case containsWord(t, "pix"):
		u.method = "pix"
	case strings.Contains(t, "boleto"):
		u.method = "boleto"
	case strings.Contains(t, "cartao") || strings.Contains(t, "credito"):
		u.method = "cartao"
	}

	switch {
	case strings.Contains(t, "preco") || strings.Contains(t, "valor") || strings.Contains(t, "custa"):
		u.info = infoPrice
	case containsAny(t, []string{"beneficio", "vantage", "oferece"}, false):
		u.info = infoBenefits
	case strings.Contains(t, "descricao"):
		u.info = infoDescription
	case strings.Contains(t, "forma de pagamento") || strings.Contains(t, "formas de pagamento"):
		u.info = infoMethods
	case containsAny(t, []string{"planos", "disponive", "existem", "quais"}, false):
		u.info = infoCatalog
	}

	switch {
	case u.method != "":
		u.intent = intentMethod
	case u.info == infoMethods:
		u.intent = intentPlanInfo
	case containsAny(t, cancelWords, false):
		u.intent = intentCancel
	case containsAny(t, historyWords, false):
		u.intent = intentHistory
	case containsAny(t, paymentWords, false):
		u.intent = intentPayment
	case containsAny(t, infoWords, false) || u.info != infoGeneral || u.plan != "":
		u.intent = intentPlanInfo
	case containsAny(t, greetingWords, true):
		u.intent = intentGreeting
	}
	return u
}

// =============================================================================
// DIALOG
// =============================================================================

// Dialog answers assistant messages and remembers the plan each session is
// talking about.
type Dialog struct {
	ledger *Ledger

	mu    sync.Mutex
	plans map[string]string
}

// NewDialog creates a dialog that records payments in ledger.
func NewDialog(ledger *Ledger) *Dialog {
	return &Dialog{ledger: ledger, plans: make(map[string]string)}
}

// Reply answers one message from session.
func (d *Dialog) Reply(session, text string) (backend.AssistantReply, error) {
	u := analyze(text)

	d.mu.Lock()
	if u.plan != "" {
		d.plans[session] = u.plan
	}
	plan := d.plans[session]
	d.mu.Unlock()

	switch u.intent {
	case intentGreeting:
		return backend.AssistantReply{Text: replyGreeting}, nil
	case intentPlanInfo:
		return backend.AssistantReply{Text: planInfo(plan, u.info)}, nil
	case intentPayment:
		if plan == "" {
			return backend.AssistantReply{Text: replyAskPlan}, nil
		}
		return backend.AssistantReply{Text: askMethod(plan)}, nil
	case intentMethod:
		if plan == "" {
			return backend.AssistantReply{Text: replyAskPlan}, nil
		}
		return d.startPayment(session, plan, u.method)
	case intentCancel:
		return backend.AssistantReply{Text: replyCancel}, nil
	case intentHistory:
		return backend.AssistantReply{Text: d.history(session)}, nil
	default:
		return backend.AssistantReply{Text: replyFallback}, nil
	}
}

func (d *Dialog) startPayment(session, planID, method string) (backend.AssistantReply, error) {
	plan := model.Plans[planID]
	actions := &backend.ActionsDTO{
		PaymentRequired: true,
		PlanID:          planID,
		PaymentMethod:   method,
	}

	switch method {
	case "pix":
		img, err := QRCodePNG(PixCode)
		if err != nil {
			return backend.AssistantReply{}, err
		}
		tx := d.ledger.Create(session, method, planID, StatusPending)
		actions.PixCode = PixCode
		actions.QRCode = backend.QRCodeSpec{Image: img, Present: true}
		actions.TransactionID = tx.ID
		return backend.AssistantReply{
			Text:    fmt.Sprintf("Vamos processar seu pagamento do plano **%s** via PIX. Aqui está o código:", plan.Name),
			Actions: actions,
		}, nil

	case "boleto":
		tx := d.ledger.Create(session, method, planID, StatusPending)
		actions.Barcode = Barcode
		actions.PaymentURL = "https://exemplo.com/boleto/" + tx.ID
		actions.TransactionID = tx.ID
		return backend.AssistantReply{
			Text:    fmt.Sprintf("Vamos processar seu pagamento do plano **%s** via boleto. Aqui está o código de barras:", plan.Name),
			Actions: actions,
		}, nil

	default:
		return backend.AssistantReply{
			Text:    fmt.Sprintf("Vamos processar seu pagamento do plano **%s** via cartão de crédito. Preencha os dados do cartão para continuar.", plan.Name),
			Actions: actions,
		}, nil
	}
}

func askMethod(planID string) string {
	return fmt.Sprintf("Como você prefere pagar o plano **%s**? Aceitamos PIX, boleto ou cartão de crédito.", model.Plans[planID].Name)
}

func planInfo(planID string, kind infoKind) string {
	plan, ok := model.Plans[planID]
	if kind == infoCatalog || !ok {
		return catalog()
	}

	switch kind {
	case infoPrice:
		return fmt.Sprintf("O plano **%s** custa %s.", plan.Name, plan.Price())
	case infoBenefits:
		return fmt.Sprintf("O plano **%s** oferece os seguintes benefícios:\n- %s",
			plan.Name, strings.Join(plan.Benefits, "\n- "))
	case infoDescription:
		return plan.Description
	case infoMethods:
		return fmt.Sprintf("As opções de pagamento para o plano **%s** são: %s.",
			plan.Name, strings.Join(plan.Methods, ", "))
	default:
		return fmt.Sprintf("O plano **%s** custa %s. %s", plan.Name, plan.Price(), plan.Description)
	}
}

func catalog() string {
	var b strings.Builder
	b.WriteString("Estes são os planos disponíveis:\n")
	for _, id := range model.PlanIDs() {
		p := model.Plans[id]
		fmt.Fprintf(&b, "\n**Plano %s**\n- Preço: %s\n- Descrição: %s\n", p.Name, p.Price(), p.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dialog) history(session string) string {
	txs := d.ledger.History(session)
	if len(txs) == 0 {
		return replyNoTx
	}

	var b strings.Builder
	b.WriteString("Aqui está seu histórico de transações:\n")
	for i, tx := range txs {
		fmt.Fprintf(&b, "\n%d. %s - Plano %s - %s - %s",
			i+1,
			tx.CreatedAt.Format("02/01/2006 15:04"),
			model.Plans[tx.PlanID].Name,
			strings.ToUpper(tx.Method),
			tx.Status,
		)
	}
	return b.String()
}
