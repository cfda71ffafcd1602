package registry

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/factorline/receivables-registry/models"
)

func validInput(number string, amount int64) InvoiceInput {
	return InvoiceInput{
		InvoiceNumber: number,
		Payee:         payeeAddr,
		Payer:         payerAddr,
		Amount:        big.NewInt(amount),
		DocumentRefs:  []string{"ipfs://doc-" + number},
		DueDate:       time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestRegisterInvoices(t *testing.T) {
	t.Run("Registers Batch Of Inputs", func(t *testing.T) {
		f := newFixture()

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{
			validInput("INV001", 1000),
			validInput("INV002", 500),
		})

		assert.Nil(t, err)

		record, err := f.registry.GetInvoice("INV001", true)
		assert.Nil(t, err)
		assert.Equal(t, "1000", record.Amount)
		assert.Equal(t, payeeAddr.Hex(), record.Payee)
		assert.Equal(t, payerAddr.Hex(), record.Payer)
		assert.True(t, record.Valid)
		assert.False(t, record.Cleared)

		assert.Len(t, f.sink.OfType(models.EventInvoiceRegistered), 2)

		stored, ok := f.store.Invoice("INV002")
		assert.True(t, ok)
		assert.Equal(t, "500", stored.Amount)
	})

	t.Run("Empty Invoice Number", func(t *testing.T) {
		f := newFixture()

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{validInput("", 1000)})

		assert.ErrorIs(t, err, ErrEmptyInvoiceNumber)
	})

	t.Run("Duplicate Within Call", func(t *testing.T) {
		f := newFixture()

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{
			validInput("INV001", 1000),
			validInput("INV001", 500),
		})

		assert.ErrorIs(t, err, ErrInvoiceExists)
	})

	t.Run("Duplicate Of Registered", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{validInput("INV001", 500)})

		assert.ErrorIs(t, err, ErrInvoiceExists)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		f := newFixture()

		input := validInput("INV001", 0)
		assert.ErrorIs(t, f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{input}), ErrInvalidAmount)

		input.Amount = nil
		assert.ErrorIs(t, f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{input}), ErrInvalidAmount)
	})

	t.Run("Due Date Not In Future", func(t *testing.T) {
		f := newFixture()

		input := validInput("INV001", 1000)
		input.DueDate = time.Now().Add(-time.Hour)

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{input})

		assert.ErrorIs(t, err, ErrInvalidDueDate)
	})

	t.Run("All Or Nothing", func(t *testing.T) {
		f := newFixture()

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{
			validInput("INV001", 1000),
			validInput("INV002", 0),
		})

		assert.ErrorIs(t, err, ErrInvalidAmount)

		// the valid member was not committed either
		_, err = f.registry.GetInvoice("INV001", true)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
		assert.Empty(t, f.sink.Events())
	})

	t.Run("Number Reusable After Invalidation", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)
		assert.Nil(t, f.registry.Invalidate(adminAddr, "INV001"))

		err := f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{validInput("INV001", 750)})

		assert.Nil(t, err)
		record, err := f.registry.GetInvoice("INV001", true)
		assert.Nil(t, err)
		assert.Equal(t, "750", record.Amount)
	})

	t.Run("Reregistration With New Parties Reindexes", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)
		assert.Nil(t, f.registry.Invalidate(adminAddr, "INV001"))

		input := validInput("INV001", 750)
		input.Payee = investorAddr
		input.Payer = adminAddr
		assert.Nil(t, f.registry.RegisterInvoices(investorAddr, []InvoiceInput{input}))

		records, count, err := f.registry.Query(Selector{Payee: investorAddr}, true)
		assert.Nil(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, investorAddr.Hex(), records[0].Payee)

		_, count, err = f.registry.Query(Selector{Payee: payeeAddr}, true)
		assert.Nil(t, err)
		assert.Equal(t, 0, count)

		records, count, err = f.registry.Query(Selector{Payer: adminAddr}, true)
		assert.Nil(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, adminAddr.Hex(), records[0].Payer)

		_, count, err = f.registry.Query(Selector{Payer: payerAddr}, true)
		assert.Nil(t, err)
		assert.Equal(t, 0, count)

		assert.Empty(t, f.registry.ListInvoicesForParty(payeeAddr))
		assert.Len(t, f.registry.ListInvoicesForParty(investorAddr), 1)
	})

	t.Run("Registered Event Carries Document Refs", func(t *testing.T) {
		f := newFixture()
		assert.Nil(t, f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{validInput("INV001", 1000)}))

		events := f.sink.OfType(models.EventInvoiceRegistered)
		assert.Len(t, events, 1)
		assert.Equal(t, []string{"ipfs://doc-INV001"}, events[0].DocumentRefs)
	})
}

func TestInvalidate(t *testing.T) {
	t.Run("Admin Invalidates", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)

		err := f.registry.Invalidate(adminAddr, "INV001")

		assert.Nil(t, err)

		_, err = f.registry.GetInvoice("INV001", true)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)

		// the tombstone is still visible without enforcement
		record, err := f.registry.GetInvoice("INV001", false)
		assert.Nil(t, err)
		assert.Equal(t, "INV001", record.InvoiceNumber)
		assert.False(t, record.Valid)

		assert.Len(t, f.sink.OfType(models.EventInvoiceInvalidated), 1)
	})

	t.Run("Non Admin Rejected", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)

		err := f.registry.Invalidate(payeeAddr, "INV001")

		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("Unknown Invoice", func(t *testing.T) {
		f := newFixture()

		err := f.registry.Invalidate(adminAddr, "INV404")

		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("Already Invalidated", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)
		assert.Nil(t, f.registry.Invalidate(adminAddr, "INV001"))

		err := f.registry.Invalidate(adminAddr, "INV001")

		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}

func TestGetInvoice(t *testing.T) {
	t.Run("Absent Without Enforcement", func(t *testing.T) {
		f := newFixture()

		record, err := f.registry.GetInvoice("INV404", false)

		assert.Nil(t, err)
		assert.Equal(t, models.InvoiceRecord{}, record)
	})

	t.Run("Absent With Enforcement", func(t *testing.T) {
		f := newFixture()

		_, err := f.registry.GetInvoice("INV404", true)

		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}

func TestListInvoicesForParty(t *testing.T) {
	t.Run("By Side", func(t *testing.T) {
		f := newFixture()
		f.registerInvoice(t, "INV001", 1000)
		f.registerInvoice(t, "INV002", 500)

		asPayee := f.registry.ListInvoicesForParty(payeeAddr)
		assert.Len(t, asPayee, 2)

		asPayer := f.registry.ListInvoicesForParty(payerAddr)
		assert.Len(t, asPayer, 2)

		none := f.registry.ListInvoicesForParty(investorAddr)
		assert.Empty(t, none)
	})

	t.Run("Both Sides In Registration Order", func(t *testing.T) {
		f := newFixture()

		// INV001 names the party as payee, INV002 as payer, INV003 as
		// payee again; listing must interleave by registration order
		owed := validInput("INV002", 500)
		owed.Payee = payeeAddr
		owed.Payer = investorAddr
		first := validInput("INV001", 1000)
		first.Payee = investorAddr
		third := validInput("INV003", 250)
		third.Payee = investorAddr

		assert.Nil(t, f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{first, owed, third}))

		records := f.registry.ListInvoicesForParty(investorAddr)
		assert.Len(t, records, 3)
		assert.Equal(t, "INV001", records[0].InvoiceNumber)
		assert.Equal(t, "INV002", records[1].InvoiceNumber)
		assert.Equal(t, "INV003", records[2].InvoiceNumber)
	})

	t.Run("Self Paired Returned Once", func(t *testing.T) {
		f := newFixture()

		input := validInput("INV001", 1000)
		input.Payer = payeeAddr
		assert.Nil(t, f.registry.RegisterInvoices(payeeAddr, []InvoiceInput{input}))

		records := f.registry.ListInvoicesForParty(payeeAddr)
		assert.Len(t, records, 1)
		assert.Equal(t, "INV001", records[0].InvoiceNumber)
	})
}
