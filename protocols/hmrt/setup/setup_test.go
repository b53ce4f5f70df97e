package setup

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/internal/test"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
	"github.com/taurusgroup/two-party-rsa/pkg/protocol"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

const (
	idOne party.ID = "alice"
	idTwo party.ID = "bob"
)

func newParty(t *testing.T, role hmrt.Role) *hmrt.Party {
	t.Helper()
	config := &hmrt.Config{
		CandidateBits:      64,
		PaillierBits:       test.PaillierBits,
		TrialDivisionBound: 60,
		Group:              test.Group(),
	}
	p, err := hmrt.NewParty(role, config, nil)
	require.NoError(t, err)
	p.Paillier = test.PaillierSecretKey(int(role) - 1)
	return p
}

func startSessions(t *testing.T, sessionID []byte) []round.Session {
	t.Helper()
	one, err := Start(newParty(t, hmrt.PartyOne), idOne, idTwo)(sessionID)
	require.NoError(t, err)
	two, err := Start(newParty(t, hmrt.PartyTwo), idTwo, idOne)(sessionID)
	require.NoError(t, err)
	return []round.Session{one, two}
}

func checkOutput(t *testing.T, rounds []round.Session) {
	t.Helper()
	var joint []*hmrt.Keys
	for _, r := range rounds {
		require.IsType(t, &round.Output{}, r, "expected result round")
		keys, ok := r.(*round.Output).Result.(*hmrt.Keys)
		require.True(t, ok, "result should be *hmrt.Keys")
		joint = append(joint, keys)
	}
	assert.True(t, joint[0].Joint.Equal(joint[1].Joint), "joint keys differ")
	assert.Equal(t, hmrt.PartyOne, joint[0].Role)
	assert.Equal(t, hmrt.PartyTwo, joint[1].Role)
}

func TestSetup(t *testing.T) {
	rounds := startSessions(t, []byte(uuid.NewString()))
	for {
		done, err := test.Rounds(rounds, nil)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}
	checkOutput(t, rounds)
}

func TestSetupHandler(t *testing.T) {
	sessionID := []byte(uuid.NewString())
	network := test.NewNetwork(party.NewIDSlice([]party.ID{idOne, idTwo}))

	starts := map[party.ID]protocol.StartFunc{
		idOne: Start(newParty(t, hmrt.PartyOne), idOne, idTwo),
		idTwo: Start(newParty(t, hmrt.PartyTwo), idTwo, idOne),
	}
	handlers := map[party.ID]*protocol.TwoPartyHandler{}
	for id, start := range starts {
		h, err := protocol.NewTwoPartyHandler(start, sessionID, zerolog.Nop())
		require.NoError(t, err)
		handlers[id] = h
	}

	var wg sync.WaitGroup
	for id, h := range handlers {
		wg.Add(1)
		go func(id party.ID, h *protocol.TwoPartyHandler) {
			defer wg.Done()
			test.HandlerLoop(id, h, network)
		}(id, h)
	}
	wg.Wait()

	one, err := handlers[idOne].Result()
	require.NoError(t, err)
	two, err := handlers[idTwo].Result()
	require.NoError(t, err)
	assert.True(t, one.(*hmrt.Keys).Joint.Equal(two.(*hmrt.Keys).Joint))
}

type swapKeys struct {
	from party.ID
	with *hmrt.KeySetupMessage
}

func (r swapKeys) ModifyContent(from party.ID, content round.Content) {
	if msg, ok := content.(*message2); ok && from == r.from {
		msg.Keys.ElGamalKey = r.with.ElGamalKey
	}
}

func TestSetupAbort(t *testing.T) {
	// keys of an unrelated setup, whose proofs do not match the session
	other, err := newParty(t, hmrt.PartyTwo).StartKeySetup()
	require.NoError(t, err)

	rounds := startSessions(t, []byte(uuid.NewString()))
	rule := swapKeys{from: idTwo, with: other.Message()}
	for {
		done, err := test.Rounds(rounds, rule)
		require.NoError(t, err, "failed to process round")
		if done {
			break
		}
	}

	abort, ok := rounds[0].(*round.Abort)
	require.True(t, ok, "party one should abort")
	assert.Equal(t, []party.ID{idTwo}, abort.Culprits)
	assert.ErrorIs(t, abort.Err, hmrt.ErrInvalidElGamalKey)
	require.IsType(t, &round.Output{}, rounds[1], "party two should finish")
}

func TestSetupMissingContent(t *testing.T) {
	r := &round2{}
	err := r.VerifyMessage(round.Message{From: idTwo, Content: &message2{}})
	assert.ErrorIs(t, err, round.ErrInvalidContent)
}

func TestStartInvalid(t *testing.T) {
	_, err := Start(newParty(t, hmrt.PartyOne), idOne, idOne)(nil)
	assert.Error(t, err)
	_, err = Start(nil, idOne, idTwo)(nil)
	assert.Error(t, err)
}

func TestHandlerStop(t *testing.T) {
	one, err := protocol.NewTwoPartyHandler(Start(newParty(t, hmrt.PartyOne), idOne, idTwo), nil, zerolog.Nop())
	require.NoError(t, err)
	two, err := protocol.NewTwoPartyHandler(Start(newParty(t, hmrt.PartyTwo), idTwo, idOne), nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = one.Result()
	assert.ErrorIs(t, err, protocol.ErrNotFinished)

	one.Stop()
	_, err = one.Result()
	assert.ErrorIs(t, err, protocol.ErrStopped)

	var msgs []*protocol.Message
	for msg := range one.Listen() {
		msgs = append(msgs, msg)
	}
	// the keys for round 2, then the abort notice
	require.Len(t, msgs, 2)
	assert.Equal(t, round.Number(2), msgs[0].RoundNumber)
	assert.Equal(t, round.Number(0), msgs[1].RoundNumber)

	require.True(t, two.CanAccept(msgs[1]))
	two.Accept(msgs[1])
	_, err = two.Result()
	assert.ErrorIs(t, err, protocol.ErrCounterpartyAborted)
}
