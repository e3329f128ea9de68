package chain

// ABI of the KiranaLedger contract. Only the entry points the pipeline uses
// are declared; amounts are passed in the chain's smallest unit.
const kiranaLedgerABI = `[
  {"type":"function","name":"recordTransaction","stateMutability":"nonpayable",
   "inputs":[{"name":"transcriptHash","type":"bytes32"},{"name":"shop","type":"address"},{"name":"amount","type":"uint256"},{"name":"txType","type":"uint8"}],
   "outputs":[{"name":"txId","type":"uint256"}]},
  {"type":"function","name":"recordBatchTransactions","stateMutability":"nonpayable",
   "inputs":[{"name":"batchHash","type":"bytes32"},{"name":"shop","type":"address"},{"name":"totalAmount","type":"uint256"}],
   "outputs":[{"name":"txId","type":"uint256"}]},
  {"type":"function","name":"registerShopkeeper","stateMutability":"nonpayable",
   "inputs":[{"name":"shop","type":"address"},{"name":"name","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"updateCreditScore","stateMutability":"nonpayable",
   "inputs":[{"name":"customer","type":"address"},{"name":"score","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"createCooperative","stateMutability":"nonpayable",
   "inputs":[{"name":"name","type":"string"}],
   "outputs":[{"name":"coopId","type":"uint256"}]},
  {"type":"function","name":"joinCooperative","stateMutability":"nonpayable",
   "inputs":[{"name":"coopId","type":"uint256"},{"name":"member","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"getTransaction","stateMutability":"view",
   "inputs":[{"name":"txId","type":"uint256"}],
   "outputs":[{"name":"transcriptHash","type":"bytes32"},{"name":"shop","type":"address"},{"name":"amount","type":"uint256"},{"name":"txType","type":"uint8"},{"name":"timestamp","type":"uint256"}]},
  {"type":"function","name":"getCreditScore","stateMutability":"view",
   "inputs":[{"name":"customer","type":"address"}],
   "outputs":[{"name":"score","type":"uint256"}]},
  {"type":"function","name":"isShopkeeperRegistered","stateMutability":"view",
   "inputs":[{"name":"shop","type":"address"}],
   "outputs":[{"name":"registered","type":"bool"}]},
  {"type":"function","name":"getCooperative","stateMutability":"view",
   "inputs":[{"name":"coopId","type":"uint256"}],
   "outputs":[{"name":"name","type":"string"},{"name":"members","type":"address[]"}]},
  {"type":"function","name":"getNextTransactionId","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"txId","type":"uint256"}]}
]`
