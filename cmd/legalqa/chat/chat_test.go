package chatcmder

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/api"
)

type fakeAsker struct {
	answer string
	err    error
	asked  []string
}

func (f *fakeAsker) Ask(_ context.Context, question string) (*api.AskResponse, error) {
	f.asked = append(f.asked, question)
	if f.err != nil {
		return nil, f.err
	}
	return &api.AskResponse{Success: true, Question: question, Answer: f.answer}, nil
}

func update(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

var _ = Describe("chat model", func() {
	var (
		fake *fakeAsker
		m    model
	)

	BeforeEach(func() {
		fake = &fakeAsker{answer: "Le préavis est d'un mois."}
		m = newModel(context.Background(), fake, "http://localhost:8001")
		m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	})

	It("ignores an empty question", func() {
		next, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
		Expect(cmd).To(BeNil())
		Expect(next.turns).To(BeEmpty())
		Expect(next.waiting).To(BeFalse())
	})

	It("sends the question and renders the answer", func() {
		m.input.SetValue("  préavis de démission ")
		next, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
		Expect(cmd).NotTo(BeNil())
		Expect(next.waiting).To(BeTrue())
		Expect(next.turns).To(HaveLen(1))
		Expect(next.input.Value()).To(BeEmpty())
		Expect(next.View()).To(ContainSubstring("Recherche"))

		msg := next.ask("préavis de démission")()
		Expect(fake.asked).To(ConsistOf("préavis de démission"))

		next, _ = update(next, msg)
		Expect(next.waiting).To(BeFalse())
		Expect(next.turns[0].answer).To(Equal("Le préavis est d'un mois."))
		Expect(next.transcript()).To(ContainSubstring("préavis"))
	})

	It("keeps the error on the turn", func() {
		fake.err = errors.New("connection refused")
		m.input.SetValue("salaire")
		next, _ := update(m, tea.KeyMsg{Type: tea.KeyEnter})

		next, _ = update(next, next.ask("salaire")())
		Expect(next.turns[0].err).To(MatchError("connection refused"))
		Expect(next.transcript()).To(ContainSubstring("connection refused"))
	})

	It("quits on escape", func() {
		_, cmd := update(m, tea.KeyMsg{Type: tea.KeyEsc})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.QuitMsg{}))
	})
})
