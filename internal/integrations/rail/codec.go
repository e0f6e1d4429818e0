package rail

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// Transfer is the body of an execute request
type Transfer struct {
	Source      int64
	Destination int64
	Amount      decimal.Decimal
	Direction   models.Direction
}

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

// EncodeTransfer renders a transfer request
func EncodeTransfer(t Transfer) ([]byte, error) {
	doc := newDocument()
	root := doc.CreateElement("Transfer")
	root.CreateElement("Source").SetText(strconv.FormatInt(t.Source, 10))
	root.CreateElement("Destination").SetText(strconv.FormatInt(t.Destination, 10))
	root.CreateElement("Amount").SetText(t.Amount.String())
	root.CreateElement("Direction").SetText(string(t.Direction))
	return doc.WriteToBytes()
}

// DecodeTransfer parses a transfer request
func DecodeTransfer(raw []byte) (Transfer, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return Transfer{}, fmt.Errorf("failed to parse XML: %v", err)
	}
	root := doc.SelectElement("Transfer")
	if root == nil {
		return Transfer{}, fmt.Errorf("transfer element not found in XML")
	}

	var (
		t   Transfer
		err error
	)
	if t.Source, err = parseID(root, "Source"); err != nil {
		return Transfer{}, err
	}
	if t.Destination, err = parseID(root, "Destination"); err != nil {
		return Transfer{}, err
	}
	amount := root.SelectElement("Amount")
	if amount == nil {
		return Transfer{}, fmt.Errorf("amount element not found in XML")
	}
	if t.Amount, err = decimal.NewFromString(strings.TrimSpace(amount.Text())); err != nil {
		return Transfer{}, fmt.Errorf("failed to parse amount: %v", err)
	}
	direction := root.SelectElement("Direction")
	if direction == nil {
		return Transfer{}, fmt.Errorf("direction element not found in XML")
	}
	t.Direction = models.Direction(strings.TrimSpace(direction.Text()))
	if t.Direction != models.DirectionCredit && t.Direction != models.DirectionDebit {
		return Transfer{}, fmt.Errorf("unknown direction %q", t.Direction)
	}
	return t, nil
}

// EncodeTransferResult renders the execute response. A zero id renders an empty
// TransactionId element, meaning the transfer was not accepted.
func EncodeTransferResult(railID int64) ([]byte, error) {
	doc := newDocument()
	el := doc.CreateElement("TransferResult").CreateElement("TransactionId")
	if railID != 0 {
		el.SetText(strconv.FormatInt(railID, 10))
	}
	return doc.WriteToBytes()
}

// DecodeTransferResult parses the execute response
func DecodeTransferResult(raw []byte) (railID int64, accepted bool, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return 0, false, fmt.Errorf("failed to parse XML: %v", err)
	}
	el := doc.FindElement("//TransferResult/TransactionId")
	if el == nil || strings.TrimSpace(el.Text()) == "" {
		return 0, false, nil
	}
	railID, err = strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse transaction id: %v", err)
	}
	return railID, true, nil
}

// EncodeReport renders a settlement report ordered by transaction id
func EncodeReport(report models.Report) ([]byte, error) {
	ids := make([]int64, 0, len(report))
	for id := range report {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	doc := newDocument()
	root := doc.CreateElement("Report")
	for _, id := range ids {
		el := root.CreateElement("Transaction")
		el.CreateAttr("id", strconv.FormatInt(id, 10))
		el.CreateAttr("status", string(report[id]))
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}

// DecodeReport parses a settlement report
func DecodeReport(raw []byte) (models.Report, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}
	if doc.SelectElement("Report") == nil {
		return nil, fmt.Errorf("report element not found in XML")
	}

	report := models.Report{}
	for _, el := range doc.FindElements("//Report/Transaction") {
		id, err := strconv.ParseInt(el.SelectAttrValue("id", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse report transaction id: %v", err)
		}
		report[id] = models.Status(el.SelectAttrValue("status", string(models.StatusFail)))
	}
	return report, nil
}

func parseID(root *etree.Element, tag string) (int64, error) {
	el := root.SelectElement(tag)
	if el == nil {
		return 0, fmt.Errorf("%s element not found in XML", strings.ToLower(tag))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %v", strings.ToLower(tag), err)
	}
	return id, nil
}
